//go:build !windows

package attr

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"github.com/go-fselect/fselect/ast"
	"github.com/go-fselect/fselect/internal/variant"
)

type timeKind int

const (
	modifiedTime timeKind = iota
	createdTime
	accessedTime
)

// timeField reads modified/created/accessed via the platform stat
// structure, matching mode.rs's #[cfg(unix)]/#[cfg(windows)] split: on
// Unix, "created" maps to ctime (status-change time) since most
// filesystems expose no true birth time through syscall.Stat_t.
func (b *Bundle) timeField(kind timeKind) (variant.Variant, error) {
	if b.member != nil {
		return variant.FromDateTime(b.member.Modified), nil
	}
	info, err := b.stat()
	if err != nil {
		return variant.Empty(variant.TypeDateTime), nil
	}
	switch kind {
	case modifiedTime:
		return variant.FromDateTime(info.ModTime()), nil
	case createdTime, accessedTime:
		stat, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			return variant.FromDateTime(info.ModTime()), nil
		}
		if kind == createdTime {
			return variant.FromDateTime(time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)), nil
		}
		return variant.FromDateTime(time.Unix(stat.Atim.Sec, stat.Atim.Nsec)), nil
	}
	return variant.Empty(variant.TypeDateTime), nil
}

func (b *Bundle) kindField(field ast.Field) (variant.Variant, error) {
	if b.member != nil {
		isDir := b.member.Mode&uint32(os.ModeDir) != 0
		return variant.FromBool(field == ast.FieldIsDir && isDir || field == ast.FieldIsFile && !isDir), nil
	}
	info, err := b.stat()
	if err != nil {
		return variant.FromBool(false), nil
	}
	mode := info.Mode()
	switch field {
	case ast.FieldIsDir:
		return variant.FromBool(mode.IsDir()), nil
	case ast.FieldIsFile:
		return variant.FromBool(mode.IsRegular()), nil
	case ast.FieldIsSymlink:
		return variant.FromBool(mode&os.ModeSymlink != 0), nil
	case ast.FieldIsPipe:
		return variant.FromBool(mode&os.ModeNamedPipe != 0), nil
	case ast.FieldIsCharacterDevice:
		return variant.FromBool(mode&os.ModeCharDevice != 0), nil
	case ast.FieldIsBlockDevice:
		return variant.FromBool(mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0), nil
	case ast.FieldIsSocket:
		return variant.FromBool(mode&os.ModeSocket != 0), nil
	}
	return variant.FromBool(false), nil
}

// Unix permission bit constants, grounded verbatim on mode.rs's
// print_mode_unix constant table.
const (
	sIRUSR = 0o400
	sIWUSR = 0o200
	sIXUSR = 0o100
	sIRGRP = 0o40
	sIWGRP = 0o20
	sIXGRP = 0o10
	sIROTH = 0o4
	sIWOTH = 0o2
	sIXOTH = 0o1
	sISUID = 0o4000
	sISGID = 0o2000
)

func (b *Bundle) modeField(field ast.Field) (variant.Variant, error) {
	var rawMode uint32
	if b.member != nil {
		rawMode = b.member.Mode
	} else {
		info, err := b.stat()
		if err != nil {
			return variant.Empty(variant.TypeInt), nil
		}
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			rawMode = stat.Mode
		} else {
			rawMode = uint32(info.Mode().Perm())
		}
	}

	switch field {
	case ast.FieldMode:
		return variant.FromString(strconv.FormatUint(uint64(rawMode&0o7777), 8)), nil
	case ast.FieldUserRead:
		return variant.FromBool(rawMode&sIRUSR != 0), nil
	case ast.FieldUserWrite:
		return variant.FromBool(rawMode&sIWUSR != 0), nil
	case ast.FieldUserExec:
		return variant.FromBool(rawMode&sIXUSR != 0), nil
	case ast.FieldGroupRead:
		return variant.FromBool(rawMode&sIRGRP != 0), nil
	case ast.FieldGroupWrite:
		return variant.FromBool(rawMode&sIWGRP != 0), nil
	case ast.FieldGroupExec:
		return variant.FromBool(rawMode&sIXGRP != 0), nil
	case ast.FieldOtherRead:
		return variant.FromBool(rawMode&sIROTH != 0), nil
	case ast.FieldOtherWrite:
		return variant.FromBool(rawMode&sIWOTH != 0), nil
	case ast.FieldOtherExec:
		return variant.FromBool(rawMode&sIXOTH != 0), nil
	case ast.FieldSuid:
		return variant.FromBool(rawMode&sISUID != 0), nil
	case ast.FieldSgid:
		return variant.FromBool(rawMode&sISGID != 0), nil
	}
	return variant.Empty(variant.TypeBool), nil
}

func (b *Bundle) ownerField(field ast.Field) (variant.Variant, error) {
	if b.member != nil {
		return variant.Empty(variant.TypeString), nil
	}
	info, err := b.stat()
	if err != nil {
		return variant.Empty(variant.TypeString), nil
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return variant.Empty(variant.TypeString), nil
	}
	switch field {
	case ast.FieldUid:
		return variant.FromInt(int64(stat.Uid)), nil
	case ast.FieldGid:
		return variant.FromInt(int64(stat.Gid)), nil
	case ast.FieldUser:
		if u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10)); err == nil {
			return variant.FromString(u.Username), nil
		}
		return variant.FromString(strconv.FormatUint(uint64(stat.Uid), 10)), nil
	case ast.FieldGroup:
		if g, err := user.LookupGroupId(strconv.FormatUint(uint64(stat.Gid), 10)); err == nil {
			return variant.FromString(g.Name), nil
		}
		return variant.FromString(strconv.FormatUint(uint64(stat.Gid), 10)), nil
	}
	return variant.Empty(variant.TypeString), nil
}
