package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adebayor/resumetable/internal/database"
	"github.com/adebayor/resumetable/internal/extract"
	"github.com/adebayor/resumetable/mocks"
)

const modelTable = "| Name | Years |\n|---|---|\n| Alice | 5 |\n| Bob | 3 |"

func testResume(filename, key string) database.Resume {
	return database.Resume{
		ID:               uuid.New(),
		OriginalFilename: filename,
		Mime:             extract.MimeText,
		ObjectKey:        key,
		SessionID:        uuid.New(),
	}
}

func TestRun_ParsesTableFromResponse(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, "a.txt").Return([]byte("alice resume"), nil)
	store.On("Download", mock.Anything, "b.txt").Return([]byte("bob resume"), nil)
	extractor.On("Extract", extract.MimeText, []byte("alice resume")).Return("alice text", nil)
	extractor.On("Extract", extract.MimeText, []byte("bob resume")).Return("bob text", nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return(modelTable, nil)

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	report, err := a.Run(context.Background(), []database.Resume{
		testResume("alice.txt", "a.txt"),
		testResume("bob.txt", "b.txt"),
	})

	require.NoError(t, err)
	require.NotNil(t, report.Table)
	assert.Equal(t, []string{"Name", "Years"}, report.Table.Columns)
	assert.Equal(t, [][]string{{"Alice", "5"}, {"Bob", "3"}}, report.Table.Rows)
	assert.Equal(t, modelTable, report.RawText)
	assert.Empty(t, report.Warnings)

	// both resume texts ended up in the one prompt
	prompt := llm.Calls[0].Arguments.String(1)
	assert.Contains(t, prompt, "alice text")
	assert.Contains(t, prompt, "bob text")
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRun_OneBadFileStillYieldsTable(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, "a.pdf").Return([]byte("ok-a"), nil)
	store.On("Download", mock.Anything, "broken.pdf").Return([]byte("garbage"), nil)
	store.On("Download", mock.Anything, "c.pdf").Return([]byte("ok-c"), nil)
	extractor.On("Extract", mock.Anything, []byte("ok-a")).Return("alice text", nil)
	extractor.On("Extract", mock.Anything, []byte("garbage")).Return("", errors.New("failed to read pdf"))
	extractor.On("Extract", mock.Anything, []byte("ok-c")).Return("carol text", nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return(modelTable, nil)

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	report, err := a.Run(context.Background(), []database.Resume{
		testResume("alice.pdf", "a.pdf"),
		testResume("broken.pdf", "broken.pdf"),
		testResume("carol.pdf", "c.pdf"),
	})

	require.NoError(t, err)
	require.NotNil(t, report.Table)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "broken.pdf")

	prompt := llm.Calls[0].Arguments.String(1)
	assert.Contains(t, prompt, "alice text")
	assert.Contains(t, prompt, "carol text")
	assert.NotContains(t, prompt, "garbage")
}

func TestRun_NoTextNeverCallsLLM(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("", errors.New("failed to read pdf"))

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	_, err := a.Run(context.Background(), []database.Resume{testResume("x.pdf", "x.pdf")})

	assert.ErrorIs(t, err, ErrNoText)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRun_EmptyExtractionCountsAsNoText(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("   \n ", nil)

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	_, err := a.Run(context.Background(), []database.Resume{testResume("scan.pdf", "scan.pdf")})

	assert.ErrorIs(t, err, ErrNoText)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRun_LLMFailureIsAnError(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("some text", nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	_, err := a.Run(context.Background(), []database.Resume{testResume("x.txt", "x.txt")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRun_NoTableFallsBackToRawText(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	raw := "I could not find any structured candidate details."
	store.On("Download", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("some text", nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	report, err := a.Run(context.Background(), []database.Resume{testResume("x.txt", "x.txt")})

	require.NoError(t, err)
	assert.Nil(t, report.Table)
	assert.Equal(t, raw, report.RawText)
	assert.NotEmpty(t, report.ParseNote)
}

func TestRun_FencedResponseStillParses(t *testing.T) {
	store := new(mocks.MockDownloader)
	extractor := new(mocks.MockExtractor)
	llm := new(mocks.MockGenerator)

	store.On("Download", mock.Anything, mock.Anything).Return([]byte("data"), nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("some text", nil)
	llm.On("Generate", mock.Anything, mock.Anything).Return("```markdown\n"+modelTable+"\n```", nil)

	a := &Analyzer{Store: store, Extractor: extractor, LLM: llm}
	report, err := a.Run(context.Background(), []database.Resume{testResume("x.txt", "x.txt")})

	require.NoError(t, err)
	require.NotNil(t, report.Table)
	assert.Equal(t, []string{"Name", "Years"}, report.Table.Columns)
}
