package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/store"
)

// runCLI executes the root command against the database at db and
// returns what it wrote to stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIStderr(t, db, args...)
	return out, err
}

func runCLIStderr(t *testing.T, db string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "rollcall.db")
}

func TestGroupList_Seed(t *testing.T) {
	out, err := runCLI(t, newDB(t), "group", "list")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "group_list", []byte(out))
}

func TestGroupAdd_RejectsDuplicate(t *testing.T) {
	db := newDB(t)

	out, err := runCLI(t, db, "group", "add", "  Group C ")
	require.NoError(t, err)
	assert.Equal(t, "group \"Group C\" added\n", out)

	out, err = runCLI(t, db, "group", "add", "Group C")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [E001]: group \"Group C\" already exists\n", out)
}

func TestGroupRemove_RejectsNonEmpty(t *testing.T) {
	out, err := runCLI(t, newDB(t), "group", "remove", "Group A")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "still has 3 students")
}

func TestStudentAdd_ThenList(t *testing.T) {
	db := newDB(t)

	_, err := runCLI(t, db, "group", "add", "Group C")
	require.NoError(t, err)

	out, err := runCLI(t, db, "student", "add", "Group C", "Olga", "Ivanova")
	require.NoError(t, err)
	assert.Equal(t, "student \"Olga Ivanova\" added to group \"Group C\"\n", out)

	out, err = runCLI(t, db, "student", "list", "--group", "Group C")
	require.NoError(t, err)
	assert.Equal(t, "  7  Olga Ivanova\n", out)
}

func TestStudentList_UnknownGroup(t *testing.T) {
	_, err := runCLI(t, newDB(t), "student", "list", "-g", "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStudentShow_BadID(t *testing.T) {
	out, err := runCLI(t, newDB(t), "student", "show", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestMark_CyclesAndShows(t *testing.T) {
	db := newDB(t)

	_, err := runCLI(t, db, "mark", "2024-01-10", "1")
	require.NoError(t, err)

	out, err := runCLI(t, db, "attendance", "show", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-10 (Wednesday)\n")
	assert.Contains(t, out, "  [+]   1  Ivan Petrov\n")
	assert.Contains(t, out, "  [ ]   2  Dmitry Orlov\n")

	out, err = runCLI(t, db, "student", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Group:      Group A\n")
	assert.Contains(t, out, "Attendance: 100% (1 present, 0 absent, 1 days)\n")

	_, err = runCLI(t, db, "mark", "2024-01-10", "1")
	require.NoError(t, err)
	out, err = runCLI(t, db, "attendance", "show", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "  [-]   1  Ivan Petrov\n")
}

func TestMark_JSON(t *testing.T) {
	out, err := runCLI(t, newDB(t), "--format", "json", "mark", "2024-01-10", "4")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   MarkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "2024-01-10", resp.Data.Date)
	assert.Equal(t, 4, resp.Data.StudentID)
	assert.True(t, resp.Data.Status.IsMarked())
}

func TestMark_UnknownStudent(t *testing.T) {
	out, err := runCLI(t, newDB(t), "mark", "2024-01-10", "99")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "student 99 not found")
}

func TestSchedule_Show(t *testing.T) {
	out, err := runCLI(t, newDB(t), "schedule", "show")
	require.NoError(t, err)
	assert.Equal(t, "Wednesday, Friday\n", out)
}

func TestExport_Stdout(t *testing.T) {
	out, err := runCLI(t, newDB(t), "export", "--out", "-")
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "groups")
	assert.Contains(t, doc, "students")
	assert.Contains(t, out, "Ivan Petrov")
}

func TestImport_RejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := runCLI(t, newDB(t), "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImport_InvalidFileRestoresData(t *testing.T) {
	db := newDB(t)
	_, err := runCLI(t, db, "group", "add", "Group C")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"groups": 5}`), 0644))

	out, err := runCLI(t, db, "import", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "previous data restored")

	out, err = runCLI(t, db, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Group C (0)")

	out, err = runCLI(t, db, "backup", "info")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E008]")
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newDB(t)
	_, err := runCLI(t, src, "group", "add", "Group C")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "export.json")
	_, err = runCLI(t, src, "export", "-o", file)
	require.NoError(t, err)

	dst := newDB(t)
	out, err := runCLI(t, dst, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "data imported")

	out, err = runCLI(t, dst, "group", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Group C (0)")
}

func TestCheck_Consistent(t *testing.T) {
	out, err := runCLI(t, newDB(t), "check")
	require.NoError(t, err)
	assert.Equal(t, "✓ Data is consistent\n", out)
}

func TestImport_StaleCounterThenStudentAdd(t *testing.T) {
	db := newDB(t)
	path := filepath.Join(t.TempDir(), "stale.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"groups": {"A": [1, 2]},
		"students": {"1": {"id": 1, "name": "Ivan"}, "2": {"id": 2, "name": "Olga"}},
		"attendance": {},
		"schedule": [1],
		"nextStudentId": 1
	}`), 0644))

	_, err := runCLI(t, db, "import", path)
	require.NoError(t, err)

	_, err = runCLI(t, db, "student", "add", "A", "Petr")
	require.NoError(t, err)

	out, err := runCLI(t, db, "student", "list", "-g", "A")
	require.NoError(t, err)
	assert.Equal(t, "  1  Ivan\n  2  Olga\n  3  Petr\n", out)
}

func writeRaw(t *testing.T, db string, payload string) {
	t.Helper()
	primary, err := kv.OpenSQLite(db)
	require.NoError(t, err)
	require.NoError(t, primary.Set(context.Background(), store.DataKey, []byte(payload)))
	require.NoError(t, primary.Close())
}

func TestStartup_WarnsOnCorruptedData(t *testing.T) {
	db := newDB(t)
	corrupt := `{"groups": {"A": ["x"]}, "students": {}, "attendance": {}, "schedule": [1], "nextStudentId": 1}`
	writeRaw(t, db, corrupt)

	_, stderr, err := runCLIStderr(t, db, "group", "add", "Group C")
	require.Error(t, err)
	assert.Contains(t, stderr, "warning: stored data is corrupted")

	out, err := runCLI(t, db, "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"x"`)
	assert.NotContains(t, out, "Group C")
}

func TestStartup_RepairsDanglingReferences(t *testing.T) {
	db := newDB(t)
	writeRaw(t, db, `{"groups": {"A": [1, 9]}, "students": {"1": {"id": 1, "name": "Ivan"}}, "attendance": {}, "schedule": [1], "nextStudentId": 2}`)

	out, err := runCLI(t, db, "student", "list", "-g", "A")
	require.NoError(t, err)
	assert.Equal(t, "  1  Ivan\n", out)

	out, err = runCLI(t, db, "check")
	require.NoError(t, err)
	assert.Equal(t, "✓ Data is consistent\n", out)
}
