package converter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/csv2xml/internal/charset"
	"github.com/ginjaninja78/csv2xml/internal/csvparser"
	"github.com/ginjaninja78/csv2xml/internal/mapper"
	"github.com/ginjaninja78/csv2xml/internal/validation"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_CSV(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "people.csv",
		"person.name;person.address.city;person.address.zip;person.nickname\n"+
			"Ana;Lyon;69001;\n"+
			"Bea;Nice;;Bee\n")
	output := filepath.Join(dir, "out", "people.xml")

	result := New(input, output, Options{Options: mapper.Options{RootTag: "people"}}, slog.Default()).Run(context.Background())
	require.NoError(t, result.Error)

	assert.True(t, result.Success)
	assert.Equal(t, output, result.OutputFile)
	assert.Equal(t, 2, result.Stats.Rows)
	assert.Equal(t, 4, result.Stats.Columns)
	assert.Equal(t, "person", result.Stats.RowTag)
	assert.Zero(t, result.Stats.Warnings)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<people>
  <person>
    <name>Ana</name>
    <address>
      <city>Lyon</city>
      <zip>69001</zip>
    </address>
  </person>
  <person>
    <name>Bea</name>
    <address>
      <city>Nice</city>
    </address>
    <nickname>Bee</nickname>
  </person>
</people>
`
	assert.Equal(t, want, string(data))

	// people, 2 x person, 2 x name, 2 x address, 2 x city, zip, nickname
	assert.Equal(t, 11, result.Stats.Elements)

	leftovers, err := filepath.Glob(filepath.Join(dir, "out", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRun_KeepEmptyAndRowTagOverride(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "id;note\n1;\n")
	output := filepath.Join(dir, "in.xml")

	options := Options{
		Options: mapper.Options{RowTag: "item", KeepEmpty: true},
		Indent:  "\t",
	}
	result := New(input, output, options, nil).Run(context.Background())
	require.NoError(t, result.Error)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>\n\t<item>\n\t\t<id>1</id>\n\t\t<note />\n\t</item>\n</root>\n", string(data))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "a;b\n1;2\n")
	output := filepath.Join(dir, "in.xml")

	result := New(input, output, Options{DryRun: true}, nil).Run(context.Background())
	require.NoError(t, result.Error)

	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.NoFileExists(t, output)
}

func TestRun_InvalidHeaders(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "a;a.b;c.d\n1;2;3\n")
	output := filepath.Join(dir, "in.xml")

	result := New(input, output, Options{}, nil).Run(context.Background())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, validation.ErrInvalidHeaders)
	assert.NoFileExists(t, output)
}

func TestRun_DuplicateHeaderWarns(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "x;x\n1;2\n")

	result := New(input, filepath.Join(dir, "in.xml"), Options{DryRun: true}, nil).Run(context.Background())
	require.NoError(t, result.Error)

	assert.Equal(t, 1, result.Stats.Warnings)
}

func TestRun_FieldCountMismatch(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "a;b\n1;2;3\n")

	result := New(input, filepath.Join(dir, "in.xml"), Options{}, nil).Run(context.Background())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, csvparser.ErrFieldCount)
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()

	result := New(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.xml"), Options{}, nil).Run(context.Background())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, os.ErrNotExist)
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "a\n1\n")
	output := filepath.Join(dir, "in.xml")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(input, output, Options{}, nil).Run(ctx)

	assert.ErrorIs(t, result.Error, context.Canceled)
	assert.NoFileExists(t, output)
}

func TestRun_Latin1RoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "city\nZ\xfcrich\n")
	output := filepath.Join(dir, "in.xml")

	options := Options{InputEncoding: "latin1", OutputEncoding: "latin1"}
	result := New(input, output, options, nil).Run(context.Background())
	require.NoError(t, result.Error)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<city>Z\xfcrich</city>")
	assert.Contains(t, string(data), `encoding="ISO-8859-1"`)
}

func TestRun_NameNotInOutputEncoding(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "id;price€\n1;9\n")
	output := filepath.Join(dir, "in.xml")

	result := New(input, output, Options{OutputEncoding: "latin1"}, nil).Run(context.Background())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, validation.ErrInvalidHeaders)
	assert.Contains(t, result.Error.Error(), validation.RuleUnencodable)
	assert.NoFileExists(t, output)

	// UTF-8 output takes the same header.
	result = New(input, output, Options{}, nil).Run(context.Background())
	require.NoError(t, result.Error)
}

func TestRun_UnknownOutputEncoding(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "id\n1\n")

	result := New(input, filepath.Join(dir, "in.xml"), Options{OutputEncoding: "nope"}, nil).Run(context.Background())
	assert.ErrorIs(t, result.Error, charset.ErrUnknownEncoding)
}

func TestRun_RepeatedHeaderKeepsEarlierValue(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.csv", "id;a;a\n1;x;\n")
	output := filepath.Join(dir, "in.xml")

	result := New(input, output, Options{Compact: true, NoDeclaration: true}, nil).Run(context.Background())
	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.Warnings)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<root><record><id>1</id><a>x</a></record></root>\n", string(data))
}

func TestRun_XLSX(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"order.id", "order.total"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"A-1", "9.50"}))
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	output := filepath.Join(dir, "book.xml")
	result := New(input, output, Options{}, nil).Run(context.Background())
	require.NoError(t, result.Error)

	assert.Equal(t, "order", result.Stats.RowTag)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>\n  <order>\n    <id>A-1</id>\n    <total>9.50</total>\n  </order>\n</root>\n", string(data))
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, IsSpreadsheet("a/b.xlsx"))
	assert.True(t, IsSpreadsheet("B.XLSX"))
	assert.False(t, IsSpreadsheet("b.csv"))
	assert.False(t, IsSpreadsheet("xlsx"))
}
