package main

import (
	"context"
	"database/sql"
	"io/ioutil"
	"log"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oosplatform/oos/core/auth"
	dummydb "github.com/oosplatform/oos/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	logger = log.New(ioutil.Discard, "", 0)

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &commandLine{grantRepo: dummydb.NewAdminGrantRepository(db)}
}

func Test_commandLine_run_usage(t *testing.T) {
	cli := setup(t)

	tests := []struct {
		name string
		args []string // without program name
	}{
		{name: "no command"},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "grantadmin without user", args: []string{"grantadmin"}},
		{name: "revokeadmin without user", args: []string{"revokeadmin"}},
		{name: "migrate without command", args: []string{"migrate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			assert.Equal(t, errHelp, err)
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)
	cli.db = nil

	var gotCommand string
	var gotArgs []string
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	defer func() { gooseRunFunc = goose.Run }()

	require.NoError(t, cli.run([]string{"admin", "migrate", "up"}))
	assert.Equal(t, "up", gotCommand)
	assert.Empty(t, gotArgs)

	require.NoError(t, cli.run([]string{"admin", "migrate", "up-to", "3"}))
	assert.Equal(t, "up-to", gotCommand)
	assert.Equal(t, []string{"3"}, gotArgs)
}

func Test_commandLine_grantAndRevoke(t *testing.T) {
	ctx := context.Background()
	cli := setup(t)

	require.NoError(t, cli.run([]string{"admin", "grantadmin", "-user", "alice"}))
	grant, err := cli.grantRepo.GetGrant(ctx, "alice")
	require.NoError(t, err)
	// operator grants carry no granting principal
	assert.Empty(t, grant.GrantedBy)

	// granting twice fails
	err = cli.run([]string{"admin", "grantadmin", "-user", "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already holds")

	require.NoError(t, cli.run([]string{"admin", "listadmins"}))

	require.NoError(t, cli.run([]string{"admin", "revokeadmin", "-user", "alice"}))
	_, err = cli.grantRepo.GetGrant(ctx, "alice")
	assert.Equal(t, auth.ErrNotFound, err)

	err = cli.run([]string{"admin", "revokeadmin", "-user", "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no admin badge")
}
