// Package ast defines the query tree produced by the parser: fields,
// functions, expressions, roots, and queries.
package ast

import "strings"

// Field identifies a recognized per-entry attribute. Grounded on
// original_source/src/field.rs's Field enum.
type Field int

const (
	FieldUnknown Field = iota
	FieldName
	FieldPath
	FieldAbsPath
	FieldSize
	FieldFormattedSize
	FieldUid
	FieldGid
	FieldUser
	FieldGroup
	FieldCreated
	FieldAccessed
	FieldModified
	FieldIsDir
	FieldIsFile
	FieldIsSymlink
	FieldIsPipe
	FieldIsCharacterDevice
	FieldIsBlockDevice
	FieldIsSocket
	FieldMode
	FieldUserRead
	FieldUserWrite
	FieldUserExec
	FieldGroupRead
	FieldGroupWrite
	FieldGroupExec
	FieldOtherRead
	FieldOtherWrite
	FieldOtherExec
	FieldSuid
	FieldSgid
	FieldIsHidden
	FieldHasXattrs
	FieldIsShebang
	FieldWidth
	FieldHeight
	FieldDuration
	FieldBitrate
	FieldFreq
	FieldTitle
	FieldArtist
	FieldAlbum
	FieldYear
	FieldGenre
	FieldExifDateTime
	FieldExifGpsAltitude
	FieldExifGpsLatitude
	FieldExifGpsLongitude
	FieldExifMake
	FieldExifModel
	FieldExifSoftware
	FieldExifVersion
	FieldMime
	FieldIsBinary
	FieldIsText
	FieldIsArchive
	FieldIsAudio
	FieldIsBook
	FieldIsDoc
	FieldIsImage
	FieldIsSource
	FieldIsVideo
	FieldSha1
	FieldSha256
	FieldSha512
	FieldSha3
)

var fieldNames = map[Field]string{
	FieldName: "name", FieldPath: "path", FieldAbsPath: "abspath",
	FieldSize: "size", FieldFormattedSize: "fsize", FieldUid: "uid",
	FieldGid: "gid", FieldUser: "user", FieldGroup: "group",
	FieldCreated: "created", FieldAccessed: "accessed", FieldModified: "modified",
	FieldIsDir: "is_dir", FieldIsFile: "is_file", FieldIsSymlink: "is_symlink",
	FieldIsPipe: "is_pipe", FieldIsCharacterDevice: "is_char", FieldIsBlockDevice: "is_block",
	FieldIsSocket: "is_socket", FieldMode: "mode",
	FieldUserRead: "user_read", FieldUserWrite: "user_write", FieldUserExec: "user_exec",
	FieldGroupRead: "group_read", FieldGroupWrite: "group_write", FieldGroupExec: "group_exec",
	FieldOtherRead: "other_read", FieldOtherWrite: "other_write", FieldOtherExec: "other_exec",
	FieldSuid: "suid", FieldSgid: "sgid", FieldIsHidden: "is_hidden",
	FieldHasXattrs: "has_xattrs", FieldIsShebang: "is_shebang",
	FieldWidth: "width", FieldHeight: "height", FieldDuration: "duration",
	FieldBitrate: "bitrate", FieldFreq: "freq", FieldTitle: "title",
	FieldArtist: "artist", FieldAlbum: "album", FieldYear: "year", FieldGenre: "genre",
	FieldExifDateTime: "exif_datetime", FieldExifGpsAltitude: "exif_alt",
	FieldExifGpsLatitude: "exif_lat", FieldExifGpsLongitude: "exif_lon",
	FieldExifMake: "exif_make", FieldExifModel: "exif_model",
	FieldExifSoftware: "exif_software", FieldExifVersion: "exif_version",
	FieldMime: "mime", FieldIsBinary: "is_binary", FieldIsText: "is_text",
	FieldIsArchive: "is_archive", FieldIsAudio: "is_audio", FieldIsBook: "is_book",
	FieldIsDoc: "is_doc", FieldIsImage: "is_image", FieldIsSource: "is_source",
	FieldIsVideo: "is_video", FieldSha1: "sha1", FieldSha256: "sha256",
	FieldSha512: "sha512", FieldSha3: "sha3",
}

// fieldAliases maps every recognized spelling (including aliases) to the
// canonical Field, lowercased. Grounded verbatim on field.rs's FromStr.
var fieldAliases = map[string]Field{
	"name": FieldName, "path": FieldPath, "abspath": FieldAbsPath,
	"size": FieldSize, "fsize": FieldFormattedSize, "hsize": FieldFormattedSize,
	"uid": FieldUid, "gid": FieldGid, "user": FieldUser, "group": FieldGroup,
	"created": FieldCreated, "accessed": FieldAccessed, "modified": FieldModified,
	"is_dir": FieldIsDir, "is_file": FieldIsFile, "is_symlink": FieldIsSymlink,
	"is_pipe": FieldIsPipe, "is_fifo": FieldIsPipe,
	"is_char": FieldIsCharacterDevice, "is_character": FieldIsCharacterDevice,
	"is_block": FieldIsBlockDevice, "is_socket": FieldIsSocket,
	"mode": FieldMode,
	"user_read": FieldUserRead, "user_write": FieldUserWrite, "user_exec": FieldUserExec,
	"group_read": FieldGroupRead, "group_write": FieldGroupWrite, "group_exec": FieldGroupExec,
	"other_read": FieldOtherRead, "other_write": FieldOtherWrite, "other_exec": FieldOtherExec,
	"suid": FieldSuid, "sgid": FieldSgid,
	"is_hidden": FieldIsHidden, "has_xattrs": FieldHasXattrs, "is_shebang": FieldIsShebang,
	"width": FieldWidth, "height": FieldHeight, "mime": FieldMime,
	"duration": FieldDuration,
	"mp3_bitrate": FieldBitrate, "bitrate": FieldBitrate,
	"mp3_freq": FieldFreq, "freq": FieldFreq,
	"mp3_title": FieldTitle, "title": FieldTitle,
	"mp3_artist": FieldArtist, "artist": FieldArtist,
	"mp3_album": FieldAlbum, "album": FieldAlbum,
	"mp3_year": FieldYear,
	"mp3_genre": FieldGenre, "genre": FieldGenre,
	"exif_altitude": FieldExifGpsAltitude, "exif_alt": FieldExifGpsAltitude,
	"exif_datetime": FieldExifDateTime,
	"exif_latitude": FieldExifGpsLatitude, "exif_lat": FieldExifGpsLatitude,
	"exif_longitude": FieldExifGpsLongitude, "exif_lon": FieldExifGpsLongitude, "exif_lng": FieldExifGpsLongitude,
	"exif_make": FieldExifMake, "exif_model": FieldExifModel,
	"exif_software": FieldExifSoftware, "exif_version": FieldExifVersion,
	"is_binary": FieldIsBinary, "is_text": FieldIsText,
	"is_archive": FieldIsArchive, "is_audio": FieldIsAudio, "is_book": FieldIsBook,
	"is_doc": FieldIsDoc, "is_image": FieldIsImage, "is_source": FieldIsSource,
	"is_video": FieldIsVideo,
	"sha1": FieldSha1, "sha256": FieldSha256, "sha512": FieldSha512, "sha3": FieldSha3,
}

// ParseField resolves a raw identifier (case-insensitive) to a Field.
func ParseField(s string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(s)]
	return f, ok
}

func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return "unknown"
}

// Weight estimates the relative evaluation cost of a field: 0 for
// already-available name/path strings, 1 for fields satisfied by a single
// stat call, and higher for fields that require opening and reading the
// file. Grounded on expr.rs's weight table and field.rs's field families.
func (f Field) Weight() int {
	switch f {
	case FieldName, FieldPath, FieldAbsPath:
		return 0
	case FieldWidth, FieldHeight, FieldDuration, FieldBitrate, FieldFreq,
		FieldTitle, FieldArtist, FieldAlbum, FieldYear, FieldGenre,
		FieldExifDateTime, FieldExifGpsAltitude, FieldExifGpsLatitude,
		FieldExifGpsLongitude, FieldExifMake, FieldExifModel,
		FieldExifSoftware, FieldExifVersion, FieldMime, FieldIsBinary,
		FieldIsText:
		return 64
	case FieldSha1, FieldSha256, FieldSha512, FieldSha3:
		return 1024
	default:
		return 1
	}
}

// IsNumericField reports whether the field's natural comparison is
// numeric (spec 4.3: "if the referenced field is numeric, coerce both
// sides via to_int").
func (f Field) IsNumericField() bool {
	switch f {
	case FieldSize, FieldFormattedSize, FieldUid, FieldGid, FieldWidth,
		FieldHeight, FieldDuration, FieldBitrate, FieldFreq, FieldYear:
		return true
	default:
		return false
	}
}

// IsDatetimeField reports whether the field's natural comparison uses
// interval (from, to) semantics.
func (f Field) IsDatetimeField() bool {
	switch f {
	case FieldCreated, FieldAccessed, FieldModified, FieldExifDateTime:
		return true
	default:
		return false
	}
}

// IsAvailableForArchivedFiles reports whether the field can be derived
// purely from a ZIP member's recorded metadata (the "archive-safe field"
// set of the glossary). Grounded verbatim on field.rs's
// is_available_for_archived_files.
func (f Field) IsAvailableForArchivedFiles() bool {
	switch f {
	case FieldName, FieldPath, FieldAbsPath, FieldSize, FieldFormattedSize,
		FieldIsDir, FieldIsFile, FieldIsSymlink, FieldIsPipe,
		FieldIsCharacterDevice, FieldIsBlockDevice, FieldIsSocket,
		FieldMode, FieldUserRead, FieldUserWrite, FieldUserExec,
		FieldGroupRead, FieldGroupWrite, FieldGroupExec, FieldOtherRead,
		FieldOtherWrite, FieldOtherExec, FieldSuid, FieldSgid,
		FieldIsHidden, FieldModified, FieldIsArchive, FieldIsAudio,
		FieldIsBook, FieldIsDoc, FieldIsImage, FieldIsSource, FieldIsVideo:
		return true
	default:
		return false
	}
}

// IsColorizedField reports whether the field's value is a candidate for
// terminal colorization in a formatter (name only, per field.rs).
func (f Field) IsColorizedField() bool {
	return f == FieldName
}
