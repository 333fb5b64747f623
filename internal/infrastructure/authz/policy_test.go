package authz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const samplePolicy = `
roles:
  submitter: [document.upload, subfolder.submit]
  reviewer: [document.approve, document.reject, document.mark_to_update, document.undo_review]
  admin: ["*"]
default_roles: [submitter]
users:
  - id: rev-1
    email: Reviewer@Site.example
    name: Rita
    roles: [reviewer]
  - id: adm-1
    roles: [admin]
`

func TestPolicyGrantsByRole(t *testing.T) {
	p, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		user   string
		action domain.Action
		want   bool
	}{
		{"rev-1", domain.ActionApprove, true},
		{"rev-1", domain.ActionUpload, false},
		{"adm-1", domain.ActionOverrideStatus, true},
		{"adm-1", domain.ActionSweep, true},
		{"anyone", domain.ActionSubmit, true},
		{"anyone", domain.ActionReject, false},
	}
	for _, tc := range cases {
		got, err := p.CanMutate(ctx, tc.user, tc.action)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "%s %s", tc.user, tc.action)
	}
}

func TestPolicyUsers(t *testing.T) {
	p, err := Parse([]byte(samplePolicy))
	require.NoError(t, err)

	require.Equal(t, []domain.User{
		{ID: "adm-1"},
		{ID: "rev-1", Email: "reviewer@site.example", Name: "Rita"},
	}, p.Users())
}

func TestParseRejectsBadPolicies(t *testing.T) {
	cases := map[string]string{
		"unknown action": "roles:\n  r: [document.delete]\n",
		"unknown role":   "roles:\n  r: [\"*\"]\nusers:\n  - id: u\n    roles: [ghost]\n",
		"missing id":     "users:\n  - email: a@b.example\n",
		"duplicate user": "users:\n  - id: u\n  - id: u\n",
		"bad email":      "users:\n  - id: u\n    email: not-an-email\n",
		"bad yaml":       "roles: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestLoadEmptyPathAllowsAll(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	ok, err := p.CanMutate(context.Background(), "whoever", domain.ActionDeleteFolder)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, p.Users())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authz.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePolicy), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	ok, err := p.CanMutate(context.Background(), "rev-1", domain.ActionUpload)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
