package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/poligraft/internal/model"
)

type fakeExtractor struct {
	title, body string
	err         error
	calls       int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (string, string, error) {
	f.calls++
	return f.title, f.body, f.err
}

func TestResolve_Text(t *testing.T) {
	ext := &fakeExtractor{}
	got, err := NewResolver(ext).Resolve(context.Background(), Input{
		URL:  "https://news.example.com/a",
		Text: "Senator John Smith met with Acme Corp on Tuesday.",
	})

	require.NoError(t, err)
	assert.Equal(t, model.FormatPlainText, got.Format)
	assert.Equal(t, "Senator John Smith met with Acm...", got.Title)
	assert.Equal(t, "Senator John Smith met with Acme Corp on Tuesday.", got.Text)
	assert.Zero(t, ext.calls, "text takes precedence over url")
}

func TestResolve_ShortTextTitle(t *testing.T) {
	got, err := NewResolver(nil).Resolve(context.Background(), Input{Text: "Short"})
	require.NoError(t, err)
	assert.Equal(t, "Short...", got.Title)
}

func TestPlainTextTitle_Multibyte(t *testing.T) {
	text := "Señor Núñez habló con el Congreso sobre la reforma"
	title := PlainTextTitle(text)
	assert.Equal(t, string([]rune(text)[:31])+"...", title)
}

func TestResolve_URL(t *testing.T) {
	ext := &fakeExtractor{title: "Budget Vote", body: "Senator Smith voted."}
	got, err := NewResolver(ext).Resolve(context.Background(), Input{URL: "https://news.example.com/a"})

	require.NoError(t, err)
	assert.Equal(t, model.FormatHTML, got.Format)
	assert.Equal(t, "Budget Vote", got.Title)
	assert.Equal(t, "Senator Smith voted.", got.Text)
}

func TestResolve_BlankTextFallsBackToURL(t *testing.T) {
	ext := &fakeExtractor{title: "Budget Vote", body: "Senator Smith voted."}
	got, err := NewResolver(ext).Resolve(context.Background(), Input{
		URL:  "https://news.example.com/a",
		Text: "\r\n  ",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, ext.calls)
	assert.Equal(t, model.FormatHTML, got.Format)
	assert.Equal(t, "Budget Vote", got.Title)
}

func TestResolve_BlankTextWithoutURL(t *testing.T) {
	_, err := NewResolver(&fakeExtractor{}).Resolve(context.Background(), Input{Text: " \t\n"})

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestResolve_NothingSet(t *testing.T) {
	_, err := NewResolver(&fakeExtractor{}).Resolve(context.Background(), Input{URL: "  "})

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "must set source or text", ve.Reason)
}

func TestResolve_FetchFailure(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewResolver(&fakeExtractor{err: boom}).Resolve(context.Background(), Input{URL: "https://down.example.com"})

	var fe *model.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "https://down.example.com", fe.URL)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_NoExtractor(t *testing.T) {
	_, err := NewResolver(nil).Resolve(context.Background(), Input{URL: "https://a.com"})

	var fe *model.FetchError
	require.True(t, errors.As(err, &fe))
}
