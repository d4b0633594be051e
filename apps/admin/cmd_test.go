package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
	testutil "github.com/trezcool/shule/tests"
)

type repos struct {
	students  student.Repository
	fees      fee.Repository
	inquiries inquiry.Repository
}

func setup(t *testing.T) (*commandLine, repos, *bytes.Buffer) {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	repoDB := sqlxrepos.NewDB(db)
	r := repos{
		students:  sqlxrepos.NewStudentRepository(repoDB),
		fees:      sqlxrepos.NewFeeRepository(repoDB),
		inquiries: sqlxrepos.NewInquiryRepository(repoDB),
	}

	studentSvc := student.NewService(r.students)
	feeSvc := fee.NewService(r.fees, studentSvc)
	inquirySvc := inquiry.NewService(r.inquiries, nil, false)
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		db:    db,
		stats: dashboard.NewService(studentSvc, feeSvc, inquirySvc, nil, new(testutil.Logger), dashboard.Options{}),
		out:   out,
	}, r, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	defer func(run func(string, *sql.DB, string, ...string) error) { gooseRunFunc = run }(gooseRunFunc)
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_students_notes", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			assert.Equal(t, tt.wantErr, err)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate_status(t *testing.T) {
	cli, _, _ := setup(t)

	// the embedded migrations are already applied
	require.NoError(t, cli.run([]string{"admin", "migrate", "status"}))
	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))
}

func Test_commandLine_stats(t *testing.T) {
	cli, r, out := setup(t)

	st := testutil.CreateStudent(t, r.students, "Jane", "Smith", "jane@example.com", "Business", student.StatusActive)
	f := testutil.CreateFee(t, r.fees, st.ID, "Tuition", "800")
	testutil.PayFee(t, r.fees, f.ID, "300", time.Now())
	testutil.CreateInquiry(t, r.inquiries, "Alex Johnson", "alex@example.com", "Scholarships")

	require.NoError(t, cli.run([]string{"admin", "stats"}))

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 1.0, stats["totalStudents"])
	assert.Equal(t, 1.0, stats["newAdmissions"])
	assert.Equal(t, 0.0, stats["feesCollected"])
	assert.Equal(t, 500.0, stats["totalPendingFees"])
	assert.Equal(t, 0.0, stats["pendingFees"])
	assert.Equal(t, 1.0, stats["pendingInquiries"])
}

type failingStats struct{}

func (failingStats) Stats(context.Context) (dashboard.Stats, error) {
	return dashboard.Stats{}, errors.New("database is locked")
}

func Test_commandLine_stats_error(t *testing.T) {
	out := new(bytes.Buffer)
	cli := &commandLine{stats: failingStats{}, out: out}

	err := cli.run([]string{"admin", "stats"})
	assert.EqualError(t, err, "database is locked")
	assert.Empty(t, out.String())
}
