package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snippetvault/snippetvault/internal/database/testutil"
	"github.com/snippetvault/snippetvault/pkg/validator"
)

func newTestSnippetService(t *testing.T) *SnippetService {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	svc, err := NewSnippetService(db, nil)
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string {
	return &s
}

func validInput() SnippetInput {
	return SnippetInput{
		Title:       "Debounce helper",
		CodeContent: "func debounce() {}",
		Language:    "go",
		Description: strPtr("Delays invocation until input settles"),
		Tags:        []string{"util", "timing"},
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "Debounce helper", fetched.Title)
	require.Equal(t, "func debounce() {}", fetched.CodeContent)
	require.Equal(t, "go", fetched.Language)
	require.NotNil(t, fetched.Description)
	require.Equal(t, "Delays invocation until input settles", *fetched.Description)
	require.Equal(t, []string{"util", "timing"}, fetched.TagList())
	require.False(t, fetched.IsFavorite)
}

func TestCreateNormalisesInput(t *testing.T) {
	svc := newTestSnippetService(t)

	input := validInput()
	input.Title = "  Trimmed title  "
	input.Description = strPtr("   ")
	input.Tags = nil

	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "Trimmed title", created.Title)
	require.Nil(t, created.Description)
	require.Equal(t, []string{}, created.TagList())
}

func TestCreateValidationReportsAllFields(t *testing.T) {
	svc := newTestSnippetService(t)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}

	input := SnippetInput{
		Title:       "   ",
		CodeContent: "",
		Language:    string(long),
		Tags:        []string{"ok", "  "},
	}

	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)

	failures, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, failures, 4)

	fields := make(map[string]string, len(failures))
	for _, f := range failures {
		fields[f.Field] = f.Tag
	}
	require.Equal(t, "required", fields["title"])
	require.Equal(t, "required", fields["code_content"])
	require.Equal(t, "max", fields["language"])
	require.Equal(t, "required", fields["tags[1]"])

	// Nothing may be persisted on a rejected input.
	snippets, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, snippets)
}

func TestGetUnknownID(t *testing.T) {
	svc := newTestSnippetService(t)

	_, err := svc.Get(context.Background(), 9999)
	require.ErrorIs(t, err, ErrSnippetNotFound)
}

func TestUpdateReplacesFieldsButFreezesIdentity(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	update := SnippetInput{
		Title:       "Throttle helper",
		CodeContent: "func throttle() {}",
		Language:    "typescript",
		Description: nil,
		Tags:        []string{"timing"},
		IsFavorite:  true,
	}

	updated, err := svc.Update(ctx, created.ID, update)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Second)
	require.Equal(t, "Throttle helper", updated.Title)
	require.Equal(t, "typescript", updated.Language)
	require.Nil(t, updated.Description)
	require.Equal(t, []string{"timing"}, updated.TagList())
	require.True(t, updated.IsFavorite)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Throttle helper", fetched.Title)
	require.WithinDuration(t, created.CreatedAt, fetched.CreatedAt, time.Second)
}

func TestUpdateUnknownID(t *testing.T) {
	svc := newTestSnippetService(t)

	_, err := svc.Update(context.Background(), 424242, validInput())
	require.ErrorIs(t, err, ErrSnippetNotFound)
}

func TestUpdateValidationLeavesRowUntouched(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, SnippetInput{})
	require.Error(t, err)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Debounce helper", fetched.Title)
}

func TestDeleteReturnsSnapshotAndRemovesRow(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	snapshot, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, snapshot.ID)
	require.Equal(t, "Debounce helper", snapshot.Title)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrSnippetNotFound)
}

func TestDeleteTwice(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrSnippetNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	ids := make([]uint, 0, len(titles))
	for _, title := range titles {
		input := validInput()
		input.Title = title
		created, err := svc.Create(ctx, input)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	snippets, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, snippets, 3)
	require.Equal(t, ids[2], snippets[0].ID)
	require.Equal(t, ids[1], snippets[1].ID)
	require.Equal(t, ids[0], snippets[2].ID)
}

func TestListEmptyStore(t *testing.T) {
	svc := newTestSnippetService(t)

	snippets, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, snippets)
}

func TestSearchMatchesTitleSubstringCaseInsensitive(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	input := validInput()
	input.Title = "CORS middleware"
	input.Tags = []string{"http"}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	other := validInput()
	other.Title = "Binary search"
	other.Tags = []string{"algorithms"}
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	results, err := svc.List(ctx, "cors")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "CORS middleware", results[0].Title)
}

func TestSearchMatchesLanguageSubstring(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	input := validInput()
	input.Title = "Promise chain"
	input.Language = "JavaScript"
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	results, err := svc.List(ctx, "script")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Promise chain", results[0].Title)
}

func TestSearchMatchesTagExactly(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	input := validInput()
	input.Title = "Alpha"
	input.Tags = []string{"react-hooks"}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	// Exact element match hits.
	results, err := svc.List(ctx, "react-hooks")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Partial tag text does not; tags require whole-element equality.
	results, err = svc.List(ctx, "hooks")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchDoesNotMatchCodeOrDescription(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	input := validInput()
	input.Title = "Alpha"
	input.CodeContent = "const needle = 42"
	input.Description = strPtr("contains the word needle")
	input.Tags = []string{"misc"}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	results, err := svc.List(ctx, "needle")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchNoMatchesIsEmptyNotError(t *testing.T) {
	svc := newTestSnippetService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	results, err := svc.List(ctx, "zzz-no-such-snippet")
	require.NoError(t, err)
	require.Empty(t, results)
}
