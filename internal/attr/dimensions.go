package attr

import (
	"bufio"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions is the width/height pair the width/height fields read.
// Grounded on original_source/src/util/dimensions/mod.rs's Dimensions.
type Dimensions struct {
	Width  int
	Height int
}

// DimensionsExtractor tries to read the pixel dimensions of one file
// format family. Grounded verbatim on dimensions/mod.rs's
// DimensionsExtractor trait.
type DimensionsExtractor interface {
	SupportsExt(ext string) bool
	TryRead(path string) (Dimensions, bool, error)
}

// dimensionExtractors is tried in order, first match wins, mirroring
// dimensions/mod.rs's fixed EXTRACTORS array (mkv, mp4, image; svg is an
// original_source sibling module folded in here since it is also a
// fixed-format single-extension extractor).
var dimensionExtractors = []DimensionsExtractor{
	mkvExtractor{},
	mp4Extractor{},
	svgExtractor{},
	imageExtractor{},
}

func getDimensions(path string) (Dimensions, bool) {
	ext := strings.ToLower(strings.TrimPrefix(extOf(path), "."))
	if ext == "" {
		return Dimensions{}, false
	}
	for _, ex := range dimensionExtractors {
		if !ex.SupportsExt(ext) {
			continue
		}
		d, ok, err := ex.TryRead(path)
		if err != nil || !ok {
			return Dimensions{}, false
		}
		return d, true
	}
	return Dimensions{}, false
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

// imageExtractor covers the raster formats stdlib image plus
// golang.org/x/image's bmp/tiff/webp decoders handle, grounded on
// dimensions/image.rs's ImageDimensionsExtractor (backed there by the
// imagesize crate).
type imageExtractor struct{}

var imageExts = map[string]bool{
	"bmp": true, "gif": true, "jpeg": true, "jpg": true,
	"png": true, "tiff": true, "webp": true,
}

func (imageExtractor) SupportsExt(ext string) bool { return imageExts[ext] }

func (imageExtractor) TryRead(path string) (Dimensions, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return Dimensions{}, false, err
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, true, nil
}

// svgExtractor reads the root <svg> element's width/height attributes.
// Grounded on dimensions/svg.rs's SvgDimensionsExtractor.
type svgExtractor struct{}

func (svgExtractor) SupportsExt(ext string) bool { return ext == "svg" }

func (svgExtractor) TryRead(path string) (Dimensions, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false, err
	}
	defer f.Close()

	dec := xml.NewDecoder(bufio.NewReader(f))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return Dimensions{}, false, nil
		}
		if err != nil {
			return Dimensions{}, false, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "svg" {
			continue
		}
		var width, height string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				width = a.Value
			case "height":
				height = a.Value
			}
		}
		if width == "" || height == "" {
			return Dimensions{}, false, nil
		}
		w, err := strconv.Atoi(strings.TrimSuffix(width, "px"))
		if err != nil {
			return Dimensions{}, false, err
		}
		h, err := strconv.Atoi(strings.TrimSuffix(height, "px"))
		if err != nil {
			return Dimensions{}, false, err
		}
		return Dimensions{Width: w, Height: h}, true, nil
	}
}

// mp4Extractor walks the ISO-BMFF box tree (ftyp/moov/trak/tkhd) far
// enough to read the track header's fixed-point width/height fields.
// Grounded on dimensions/mp4.rs's Mp4DimensionsExtractor (backed there by
// the mp4parse crate); the spec calls for "an internal MP4/MKV box
// scanner", so this is hand-rolled rather than pulling in a parser crate.
type mp4Extractor struct{}

func (mp4Extractor) SupportsExt(ext string) bool { return ext == "mp4" || ext == "m4v" }

func (mp4Extractor) TryRead(path string) (Dimensions, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false, err
	}
	defer f.Close()

	moov, err := findBox(f, 0, "moov")
	if err != nil || moov.size == 0 {
		return Dimensions{}, false, err
	}
	trak, err := findBoxWithin(f, moov, "trak")
	for err == nil && trak.size != 0 {
		tkhd, ferr := findBoxWithin(f, trak, "tkhd")
		if ferr == nil && tkhd.size != 0 {
			if d, ok, rerr := readTkhd(f, tkhd); rerr == nil && ok {
				return d, true, nil
			}
		}
		trak, err = nextBox(f, trak, moov, "trak")
	}
	return Dimensions{}, false, nil
}

type isoBox struct {
	name        string
	start, size int64
}

func findBox(f io.ReadSeeker, offset int64, name string) (isoBox, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return isoBox{}, err
	}
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return isoBox{}, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return isoBox{}, err
	}
	return scanForBox(f, offset, end, name)
}

func findBoxWithin(f io.ReadSeeker, parent isoBox, name string) (isoBox, error) {
	headerSize := int64(8)
	return scanForBox(f, parent.start+headerSize, parent.start+parent.size, name)
}

func nextBox(f io.ReadSeeker, box, parent isoBox, name string) (isoBox, error) {
	return scanForBox(f, box.start+box.size, parent.start+parent.size, name)
}

func scanForBox(f io.ReadSeeker, start, end int64, name string) (isoBox, error) {
	pos := start
	var hdr [8]byte
	for pos+8 <= end {
		if _, err := f.Seek(pos, io.SeekStart); err != nil {
			return isoBox{}, err
		}
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return isoBox{}, err
		}
		size := int64(binary.BigEndian.Uint32(hdr[0:4]))
		boxName := string(hdr[4:8])
		if size < 8 {
			return isoBox{}, errors.New("fselect: malformed mp4 box size")
		}
		if boxName == name {
			return isoBox{name: name, start: pos, size: size}, nil
		}
		pos += size
	}
	return isoBox{}, nil
}

// readTkhd reads the track header's width/height, stored as 16.16
// fixed-point at a version-dependent offset from the box payload start.
func readTkhd(f io.ReadSeeker, box isoBox) (Dimensions, bool, error) {
	if _, err := f.Seek(box.start+8, io.SeekStart); err != nil {
		return Dimensions{}, false, err
	}
	var version [1]byte
	if _, err := io.ReadFull(f, version[:]); err != nil {
		return Dimensions{}, false, err
	}
	bodyOffset := int64(76)
	if version[0] == 1 {
		bodyOffset = int64(88)
	}
	if _, err := f.Seek(box.start+8+bodyOffset, io.SeekStart); err != nil {
		return Dimensions{}, false, err
	}
	var wh [8]byte
	if _, err := io.ReadFull(f, wh[:]); err != nil {
		return Dimensions{}, false, err
	}
	width := binary.BigEndian.Uint32(wh[0:4]) / 65536
	height := binary.BigEndian.Uint32(wh[4:8]) / 65536
	if width == 0 || height == 0 {
		return Dimensions{}, false, nil
	}
	return Dimensions{Width: int(width), Height: int(height)}, true, nil
}

// mkvExtractor reads just enough of the EBML/Matroska element tree to
// find the video track's PixelWidth/PixelHeight elements. Grounded on
// dimensions/mkv.rs's MkvDimensionsExtractor (backed there by the
// matroska crate); hand-rolled per the spec's "internal MP4/MKV box
// scanner" call.
type mkvExtractor struct{}

func (mkvExtractor) SupportsExt(ext string) bool { return ext == "mkv" || ext == "webm" }

const (
	ebmlSegment    = 0x18538067
	ebmlTracks     = 0x1654AE6B
	ebmlTrackEntry = 0xAE
	ebmlVideo      = 0xE0
	ebmlPixelWidth = 0xB0
	ebmlPixelHeight = 0xBA
)

func (mkvExtractor) TryRead(path string) (Dimensions, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	segID, segSize, err := readEBMLElement(r)
	if err != nil {
		return Dimensions{}, false, err
	}
	// A Matroska file opens with the EBML header element; the Segment
	// follows it.
	if segID == 0x1A45DFA3 {
		if _, err := io.CopyN(io.Discard, r, segSize); err != nil {
			return Dimensions{}, false, err
		}
		if segID, segSize, err = readEBMLElement(r); err != nil {
			return Dimensions{}, false, err
		}
	}
	if segID != ebmlSegment {
		return Dimensions{}, false, nil
	}
	return scanMkvElement(io.LimitReader(r, segSize))
}

// scanMkvElement walks the sibling elements of one EBML container level,
// descending into the track/video element chain and collecting whichever
// of PixelWidth/PixelHeight it encounters there. A partial match (only one
// of the two found at this level) is reported as not-ok so the caller
// keeps looking at the next sibling container.
func scanMkvElement(r io.Reader) (Dimensions, bool, error) {
	br := bufio.NewReader(r)
	var dims Dimensions
	haveWidth, haveHeight := false, false

scan:
	for {
		id, size, err := readEBMLElement(br)
		if err != nil {
			break
		}
		switch id {
		case ebmlTracks, ebmlTrackEntry, ebmlVideo:
			if d, ok, _ := scanMkvElement(io.LimitReader(br, size)); ok {
				return d, true, nil
			}
		case ebmlPixelWidth:
			v, err := readEBMLUint(br, size)
			if err == nil {
				dims.Width = int(v)
				haveWidth = true
			}
		case ebmlPixelHeight:
			v, err := readEBMLUint(br, size)
			if err == nil {
				dims.Height = int(v)
				haveHeight = true
			}
		default:
			if _, err := io.CopyN(io.Discard, br, size); err != nil {
				break scan
			}
		}
	}
	return dims, haveWidth && haveHeight, nil
}

// readEBMLElement reads one EBML element ID and its (possibly
// variable-length) size, per the Matroska EBML header encoding: the
// leading bit pattern of the first byte both selects the ID's total byte
// length and (with the marker bit masked off for sizes) the size's.
func readEBMLElement(r io.ByteReader) (id int64, size int64, err error) {
	id, err = readEBMLVarID(r)
	if err != nil {
		return 0, 0, err
	}
	size, err = readEBMLVarSize(r)
	return id, size, err
}

func readEBMLVarID(r io.ByteReader) (int64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	length := ebmlLength(first)
	value := int64(first)
	for i := 1; i < length; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value = value<<8 | int64(b)
	}
	return value, nil
}

func readEBMLVarSize(r io.ByteReader) (int64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	length := ebmlLength(first)
	mask := byte(0xFF >> uint(length))
	value := int64(first & mask)
	for i := 1; i < length; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value = value<<8 | int64(b)
	}
	return value, nil
}

func ebmlLength(first byte) int {
	for i := 0; i < 8; i++ {
		if first&(0x80>>uint(i)) != 0 {
			return i + 1
		}
	}
	return 8
}

func readEBMLUint(r io.Reader, size int64) (uint64, error) {
	if size <= 0 || size > 8 {
		return 0, errors.New("fselect: unsupported ebml uint width")
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}
