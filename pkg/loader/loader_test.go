package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/edslo/pkg/models"
)

func TestLoad_Fixture(t *testing.T) {
	path := filepath.Join("testdata", "export.json")
	ds, err := New().Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, ds.Source)
	assert.Equal(t, 1, ds.Skipped, "announcement should be skipped")
	assert.Len(t, ds.Digest, 64)
	require.Len(t, ds.Threads, 3)

	hw := ds.Threads[0]
	assert.Equal(t, 1, hw.ID)
	assert.Equal(t, "Homework-HW1", hw.CategoryPath())
	assert.True(t, hw.PlatformResolved)
	assert.True(t, hw.CreatedAt.Equal(time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)))
	require.Len(t, hw.Answers, 2)
	assert.Equal(t, models.RoleStudent, hw.Answers[0].Role)
	assert.Equal(t, models.RoleStaff, hw.Answers[1].Role)
	assert.False(t, hw.Answers[1].Endorsed, "null endorsement reads as false")
	assert.Equal(t, 250*time.Millisecond, time.Duration(hw.Answers[1].CreatedAt.Nanosecond()))

	lectures := ds.Threads[1]
	assert.Equal(t, 3, lectures.ID)
	require.Len(t, lectures.Answers, 1)
	assert.True(t, lectures.Answers[0].Endorsed)

	logistics := ds.Threads[2]
	assert.Empty(t, logistics.Answers)
	assert.True(t, logistics.PlatformResolved)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"not an array", `{"number": 1}`},
		{"missing number", `[{"type": "question", "created_at": "2024-03-04T09:00:00Z"}]`},
		{"missing created_at", `[{"number": 1, "type": "question"}]`},
		{"number is a string", `[{"number": "1", "type": "question", "created_at": "2024-03-04T09:00:00Z"}]`},
		{"answer missing created_at", `[{"number": 1, "type": "question", "created_at": "2024-03-04T09:00:00Z", "answers": [{"id": 2}]}]`},
		{"unparsable thread timestamp", `[{"number": 1, "type": "question", "created_at": "last tuesday"}]`},
		{"unparsable answer timestamp", `[{"number": 1, "type": "question", "created_at": "2024-03-04T09:00:00Z", "answers": [{"id": 2, "created_at": "soon"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidExport)
		})
	}
}

func TestParse_ErrorNamesThread(t *testing.T) {
	data := `[
		{"number": 1, "type": "question", "created_at": "2024-03-04T09:00:00Z"},
		{"number": 42, "type": "question", "created_at": "2024-03-04T09:00:00Z", "answers": [{"id": 7, "created_at": "never"}]}
	]`

	_, err := New().Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thread[1] #42")
	assert.Contains(t, err.Error(), "answers[0].created_at")
}

func TestParse_NaiveTimestampsUseLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	data := `[{"number": 1, "type": "question", "created_at": "2024-03-04T09:00:00",
		"answers": [{"id": 2, "created_at": "2024-03-04 10:30:00", "user": {"role": "admin"}}]}]`

	ds, err := New(WithLocation(loc)).Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, ds.Threads, 1)

	th := ds.Threads[0]
	assert.True(t, th.CreatedAt.Equal(time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, 90*time.Minute, th.Answers[0].CreatedAt.Sub(th.CreatedAt))
	assert.Equal(t, models.RoleAdmin, th.Answers[0].Role)
}

func TestParse_MissingUserIsStudent(t *testing.T) {
	data := `[{"number": 1, "type": "question", "created_at": "2024-03-04T09:00:00Z",
		"answers": [{"id": 2, "created_at": "2024-03-04T10:00:00Z", "user": null}, {"id": 3, "created_at": "2024-03-04T11:00:00Z"}]}]`

	ds, err := New().Parse([]byte(data))
	require.NoError(t, err)
	for _, a := range ds.Threads[0].Answers {
		assert.Equal(t, models.RoleStudent, a.Role)
	}
}

func TestParse_EmptyExport(t *testing.T) {
	ds, err := New().Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ds.Threads)
	assert.Equal(t, 0, ds.Skipped)
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("[]"))
	b := Digest([]byte("[ ]"))
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Digest([]byte("[]")))
}
