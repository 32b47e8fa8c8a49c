package main

import (
	"bytes"
	"context"
	"testing"

	"skillgrid/internal/apperr"
	"skillgrid/internal/auth"
	"skillgrid/internal/models"
	"skillgrid/internal/services"
	"skillgrid/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*commandLine, *gorm.DB, *bytes.Buffer) {
	t.Helper()
	gdb := testutil.OpenDB(t)
	profiles := services.NewProfileService(gdb, services.NewProfileHub())
	out := &bytes.Buffer{}
	return &commandLine{
		db:          gdb,
		accounts:    services.NewAccountService(profiles, nil, "CODE"),
		leaderboard: services.NewLeaderboardService(gdb),
		out:         out,
	}, gdb, out
}

type cliTest struct {
	name     string
	args     []string // without program name
	wantErr  error
	wantKind apperr.Kind
	extra    interface{}
}

func runCases(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"skillgridctl"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if pwd, ok := tt.extra.(string); ok {
				return []byte(pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantKind != apperr.Unknown:
				assert.True(t, apperr.Is(err, tt.wantKind), "cli.run() error = %v, want kind %s", err, tt.wantKind)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, out := setup(t)
	runCases(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_migrateAndSeed(t *testing.T) {
	cli, gdb, _ := setup(t)
	runCases(t, cli, []cliTest{
		{name: "migrate", args: []string{"migrate"}},
		{name: "seed", args: []string{"seed"}},
		{name: "seed again", args: []string{"seed"}},
	})

	var events, rewards int64
	require.NoError(t, gdb.Model(&models.Event{}).Count(&events).Error)
	require.NoError(t, gdb.Model(&models.Reward{}).Count(&rewards).Error)
	assert.EqualValues(t, 4, events)
	assert.EqualValues(t, 4, rewards)
}

func Test_commandLine_setRole(t *testing.T) {
	cli, gdb, out := setup(t)
	usr := testutil.CreateUser(t, gdb, "u1", "Ada", models.RoleStudent, 0)

	runCases(t, cli, []cliTest{
		{name: "no args", args: []string{"setrole"}, wantErr: errHelp},
		{name: "email but no role", args: []string{"setrole", "-email", usr.Email}, wantErr: errHelp},
		{name: "unknown role", args: []string{"setrole", "-email", usr.Email, "-role", "dean"}, wantKind: apperr.Validation},
		{name: "user not found", args: []string{"setrole", "-email", "nobody@campus.test", "-role", "faculty"}, wantKind: apperr.NotFound},
		{name: "promote", args: []string{"setrole", "-email", usr.Email, "-role", "faculty"}},
	})

	var got models.User
	require.NoError(t, gdb.First(&got, "id = ?", usr.ID).Error)
	assert.Equal(t, models.RoleFaculty, got.Role)
	assert.Contains(t, out.String(), "is now FACULTY")
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, gdb, _ := setup(t)
	usr := testutil.CreateUser(t, gdb, "u1", "Ada", models.RoleStudent, 0)

	runCases(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", usr.Email}, wantErr: errHelp},
		{name: "password too short", args: []string{"resetpassword", "-email", usr.Email}, extra: "abc", wantKind: apperr.Validation},
		{name: "user not found", args: []string{"resetpassword", "-email", "nobody@campus.test"}, extra: "secret1", wantKind: apperr.NotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: "secret1"},
	})

	var got models.User
	require.NoError(t, gdb.First(&got, "id = ?", usr.ID).Error)
	assert.True(t, auth.CheckPasswordHash("secret1", got.PasswordHash))
}

func Test_commandLine_ranks(t *testing.T) {
	cli, gdb, out := setup(t)
	testutil.CreateUser(t, gdb, "u1", "Ada", models.RoleStudent, 10)
	testutil.CreateUser(t, gdb, "u2", "Grace", models.RoleStudent, 30)

	runCases(t, cli, []cliTest{{name: "ranks", args: []string{"ranks"}}})
	assert.Contains(t, out.String(), "2 ranks updated")

	entries, err := cli.leaderboard.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u2", entries[0].ID)
}

func Test_commandLine_verifyEmail(t *testing.T) {
	cli, gdb, out := setup(t)
	ctx := context.Background()
	usr, err := cli.accounts.SignupStudent(ctx, services.SignupInput{Name: "Ada", Email: "ada@campus.test", Password: "secret1"})
	require.NoError(t, err)
	require.False(t, usr.EmailVerified)

	runCases(t, cli, []cliTest{
		{name: "no args", args: []string{"verifyemail"}, wantErr: errHelp},
		{name: "user not found", args: []string{"verifyemail", "-email", "nobody@campus.test"}, wantKind: apperr.NotFound},
		{name: "verify", args: []string{"verifyemail", "-email", usr.Email}},
	})

	var got models.User
	require.NoError(t, gdb.First(&got, "id = ?", usr.ID).Error)
	assert.True(t, got.EmailVerified)
	assert.Empty(t, got.VerifyCode)
	assert.Contains(t, out.String(), "ada@campus.test is verified")

	_, err = cli.accounts.Login(ctx, usr.Email, "secret1")
	assert.NoError(t, err)
}
