package records_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardenrich/internal/domain"
	"cardenrich/internal/records"
)

func TestReadAll_Success(t *testing.T) {
	in := "id,created_at,image_url,comment\n1,2024-01-01,http://x/img.png,hello\n2,2024-01-02,http://x/b.jpg,world\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.InputRecord{ID: "1", CreatedAt: "2024-01-01", ImageURL: "http://x/img.png", Comment: "hello"}, got[0])
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "world", got[1].Comment)
}

func TestReadAll_ExtraColumnsAndReorderedHeader(t *testing.T) {
	in := "comment,extra,image_url,id,created_at\nhi,ignored,http://x/a.png,7,2024-03-03\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.InputRecord{ID: "7", CreatedAt: "2024-03-03", ImageURL: "http://x/a.png", Comment: "hi"}, got[0])
}

func TestReadAll_SkipsEmptyLines(t *testing.T) {
	in := "id,created_at,image_url,comment\n\n1,a,b,c\n\n\n2,d,e,f\n\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestReadAll_ShortRowYieldsEmptyCells(t *testing.T) {
	in := "id,created_at,image_url,comment\n1,2024-01-01\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "", got[0].ImageURL)
	assert.Equal(t, "", got[0].Comment)
}

func TestReadAll_QuotedValuesKeepCommas(t *testing.T) {
	in := "id,created_at,image_url,comment\n\"1\",\"2024-01-01\",\"http://x/img.png\",\"hello, there\"\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello, there", got[0].Comment)
}

func TestReadAll_StripsBOM(t *testing.T) {
	in := "\ufeffid,created_at,image_url,comment\n1,a,b,c\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestNewReader_MissingColumn(t *testing.T) {
	_, err := records.NewReader(strings.NewReader("id,created_at,comment\n1,2024-01-01,hello\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	var malformed *records.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"image_url"}, malformed.Missing)
	assert.Contains(t, err.Error(), "image_url")
}

func TestNewReader_HeaderIsCaseSensitive(t *testing.T) {
	_, err := records.NewReader(strings.NewReader("ID,Created_At,image_url,comment\n"))

	var malformed *records.MalformedInputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"id", "created_at"}, malformed.Missing)
}

func TestNewReader_HeaderIsExact(t *testing.T) {
	_, err := records.NewReader(strings.NewReader(" id,created_at,image_url,comment\n"))

	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestNewReader_EmptyInput(t *testing.T) {
	_, err := records.NewReader(strings.NewReader(""))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestNewReader_UnreadableSource(t *testing.T) {
	boom := errors.New("disk gone")

	_, err := records.NewReader(iotest.ErrReader(boom))

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestReader_ReadIsOnePass(t *testing.T) {
	r, err := records.NewReader(strings.NewReader("id,created_at,image_url,comment\n1,a,b,c\n"))
	require.NoError(t, err)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReader_AllStopsEarly(t *testing.T) {
	r, err := records.NewReader(strings.NewReader("id,created_at,image_url,comment\n1,a,b,c\n2,a,b,c\n3,a,b,c\n"))
	require.NoError(t, err)

	var ids []string
	for rec, err := range r.All() {
		require.NoError(t, err)
		ids = append(ids, rec.ID)
		if len(ids) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2"}, ids)

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "3", rec.ID)
}

func TestReadAll_RowReadErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(
		strings.NewReader("id,created_at,image_url,comment\n1,a,b,c\n"),
		iotest.ErrReader(boom),
	)

	_, err := records.ReadAll(src)

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestReadAll_QuotedLineBreakIsNormalized(t *testing.T) {
	in := "id,created_at,image_url,comment\r\n1,a,b,\"multi\r\nline\"\r\n"

	got, err := records.ReadAll(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "multi\nline", got[0].Comment)
}
