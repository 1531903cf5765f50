package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`
	rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`
)

func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestText_PlainText(t *testing.T) {
	got, err := Text("essay.txt", "text/plain", []byte("Hello, world.\nSecond line."))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.\nSecond line.", got)

	got, err = Text("blob", "text/markdown; charset=utf-8", []byte("# Title"))
	require.NoError(t, err)
	assert.Equal(t, "# Title", got)
}

func TestText_DOCX(t *testing.T) {
	data := docx(t, `<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`)

	got, err := Text("paper.docx", "application/octet-stream", data)
	require.NoError(t, err)
	assert.Contains(t, got, "First paragraph.")
	assert.Contains(t, got, "paragraph.")
	assert.Less(t, strings.Index(got, "First"), strings.LastIndex(got, "paragraph."))
}

func TestText_DOCXInflateLimit(t *testing.T) {
	// one run that deflates to a few KiB but inflates past the cap
	run := strings.Repeat("a", MaxDocumentBytes+1)
	data := docx(t, `<w:p><w:r><w:t>`+run+`</w:t></w:r></w:p>`)
	require.Less(t, len(data), 1<<20)

	_, err := Text("bomb.docx", "", data)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestText_DOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Text("nodoc.docx", "", buf.Bytes())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestText_Errors(t *testing.T) {
	_, err := Text("photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Text("bad.txt", "text/plain", []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Text("empty.txt", "text/plain", []byte("   \n\t"))
	assert.ErrorIs(t, err, ErrNoText)

	_, err = Text("broken.pdf", "application/pdf", []byte("%PDF-1.4 not really a pdf"))
	assert.Error(t, err)

	_, err = Text("broken.docx", "", []byte("not a zip"))
	assert.Error(t, err)

	_, err = Text("empty.docx", "", docx(t, ""))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	assert.Equal(t, kindPDF, detect("upload.bin", "", []byte("%PDF-1.7 ...")))
	assert.Equal(t, kindPDF, detect("x", "application/pdf", nil))
	assert.Equal(t, kindDOCX, detect("REPORT.DOCX", "", nil))
	assert.Equal(t, kindText, detect("notes.md", "", nil))
	assert.Equal(t, "", detect("legacy.doc", "application/msword", nil))
}
