package musicxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	xmldom "github.com/subchen/go-xmldom"
	"golang.org/x/net/html/charset"
)

const containerPath = "META-INF/container.xml"

var (
	zipMagic      = []byte("PK\x03\x04")
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
	declEncoding  = regexp.MustCompile(`^(<\?xml[^>]*?encoding\s*=\s*["'])([A-Za-z0-9._:-]+)(["'])`)
	scoreFileExts = []string{".xml", ".musicxml"}
)

// IsCompressed reports whether name or data identifies a compressed .mxl
// container.
func IsCompressed(name string, data []byte) bool {
	return strings.EqualFold(path.Ext(name), ".mxl") || bytes.HasPrefix(data, zipMagic)
}

// parseDocument turns raw file bytes into the root element of the score
// document, unpacking .mxl containers and transcoding legacy encodings.
func parseDocument(name string, data []byte) (*xmldom.Node, error) {
	if IsCompressed(name, data) {
		member, err := extractRootfile(data)
		if err != nil {
			return nil, err
		}
		data = member
	}
	utf8Data, err := toUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	doc, err := xmldom.Parse(bytes.NewReader(utf8Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedXML)
	}
	switch doc.Root.Name {
	case "score-partwise":
		return doc.Root, nil
	case "score-timewise":
		return nil, ErrUnsupportedTimewise
	}
	return nil, fmt.Errorf("%w: <%s>", ErrUnrecognizedRoot, doc.Root.Name)
}

// extractRootfile returns the score member of an .mxl archive: the first
// rootfile named by META-INF/container.xml, or the first .xml/.musicxml member
// when the archive has no container descriptor.
func extractRootfile(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open container: %v", ErrMalformedXML, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	if desc, ok := files[containerPath]; ok {
		raw, err := readZipFile(desc)
		if err != nil {
			return nil, err
		}
		target, err := rootfilePath(raw)
		if err != nil {
			return nil, err
		}
		member, ok := files[target]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrContainerMember, target)
		}
		return readZipFile(member)
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "META-INF/") || f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		for _, want := range scoreFileExts {
			if ext == want {
				return readZipFile(f)
			}
		}
	}
	return nil, fmt.Errorf("%w: no .xml or .musicxml member", ErrContainerMember)
}

func rootfilePath(descriptor []byte) (string, error) {
	utf8Data, err := toUTF8(descriptor)
	if err != nil {
		return "", fmt.Errorf("%w: container descriptor: %v", ErrMalformedXML, err)
	}
	doc, err := xmldom.Parse(bytes.NewReader(utf8Data))
	if err != nil {
		return "", fmt.Errorf("%w: container descriptor: %v", ErrMalformedXML, err)
	}
	for _, rf := range children(child(doc.Root, "rootfiles"), "rootfile") {
		if p := attr(rf, "full-path"); p != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: container descriptor names no rootfile", ErrContainerMember)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainerMember, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainerMember, f.Name, err)
	}
	return data, nil
}

// toUTF8 transcodes a document whose BOM or XML declaration names another
// encoding, and rewrites the declaration so the decoder accepts the result.
func toUTF8(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return data[len(utf8BOM):], nil
	}
	label := ""
	switch {
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		label = "utf-16be"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		label = "utf-16le"
	default:
		if m := declEncoding.FindSubmatch(data); m != nil {
			label = strings.ToLower(string(m[2]))
		}
	}
	switch {
	case label == "" || label == "utf-8" || label == "utf8" || label == "us-ascii":
		return data, nil
	case strings.HasPrefix(label, "utf-16") && declEncoding.Match(data):
		// Declared UTF-16 but stored in an ASCII-compatible encoding.
		return declEncoding.ReplaceAll(data, []byte("${1}UTF-8${3}")), nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out = bytes.TrimPrefix(out, utf8BOM)
	return declEncoding.ReplaceAll(out, []byte("${1}UTF-8${3}")), nil
}
