// Package authz implements the mutation gate as a static role policy loaded
// from YAML. The same file may list the users of a dev deployment.
package authz

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const wildcard = "*"

var knownActions = map[domain.Action]struct{}{
	domain.ActionUpload:         {},
	domain.ActionSubmit:         {},
	domain.ActionApprove:        {},
	domain.ActionReject:         {},
	domain.ActionMarkToUpdate:   {},
	domain.ActionUndoReview:     {},
	domain.ActionOverrideStatus: {},
	domain.ActionLinkEntity:     {},
	domain.ActionCreateFolder:   {},
	domain.ActionDeleteFolder:   {},
	domain.ActionSweep:          {},
}

// fileConfig is the policy file shape. DefaultRoles apply to callers not
// listed under users.
type fileConfig struct {
	Roles        map[string][]string `yaml:"roles"`
	DefaultRoles []string            `yaml:"default_roles"`
	Users        []userEntry         `yaml:"users"`
}

type userEntry struct {
	ID    string   `yaml:"id"`
	Email string   `yaml:"email"`
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
}

type grant struct {
	all     bool
	actions map[domain.Action]struct{}
}

func (g grant) allows(action domain.Action) bool {
	if g.all {
		return true
	}
	_, ok := g.actions[action]
	return ok
}

type Policy struct {
	userGrants   map[string]grant
	defaultGrant grant
	users        []domain.User
}

// Load reads a policy file. An empty path yields a policy that allows everything.
func Load(path string) (*Policy, error) {
	if path == "" {
		return AllowAll(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read authz policy: %w", err)
	}
	return Parse(raw)
}

func AllowAll() *Policy {
	return &Policy{userGrants: map[string]grant{}, defaultGrant: grant{all: true}}
}

func Parse(raw []byte) (*Policy, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode authz policy: %w", err)
	}

	roles := make(map[string]grant, len(cfg.Roles))
	for name, actions := range cfg.Roles {
		g := grant{actions: make(map[domain.Action]struct{}, len(actions))}
		for _, a := range actions {
			if a == wildcard {
				g.all = true
				continue
			}
			action := domain.Action(a)
			if _, ok := knownActions[action]; !ok {
				return nil, fmt.Errorf("authz policy: role %q grants unknown action %q", name, a)
			}
			g.actions[action] = struct{}{}
		}
		roles[name] = g
	}

	defaultGrant, err := combine(roles, cfg.DefaultRoles)
	if err != nil {
		return nil, fmt.Errorf("authz policy default_roles: %w", err)
	}

	p := &Policy{userGrants: make(map[string]grant, len(cfg.Users)), defaultGrant: defaultGrant}
	for _, u := range cfg.Users {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			return nil, fmt.Errorf("authz policy: user without id")
		}
		if _, dup := p.userGrants[id]; dup {
			return nil, fmt.Errorf("authz policy: duplicate user %q", id)
		}
		g, err := combine(roles, u.Roles)
		if err != nil {
			return nil, fmt.Errorf("authz policy user %q: %w", id, err)
		}
		p.userGrants[id] = g
		if u.Email != "" {
			emails, err := domain.MergeEmails([]string{u.Email})
			if err != nil {
				return nil, fmt.Errorf("authz policy user %q: %w", id, err)
			}
			u.Email = emails[0]
		}
		p.users = append(p.users, domain.User{ID: id, Email: u.Email, Name: u.Name})
	}
	sort.Slice(p.users, func(i, j int) bool { return p.users[i].ID < p.users[j].ID })
	return p, nil
}

func combine(roles map[string]grant, names []string) (grant, error) {
	out := grant{actions: map[domain.Action]struct{}{}}
	for _, name := range names {
		g, ok := roles[name]
		if !ok {
			return grant{}, fmt.Errorf("unknown role %q", name)
		}
		out.all = out.all || g.all
		for a := range g.actions {
			out.actions[a] = struct{}{}
		}
	}
	return out, nil
}

func (p *Policy) CanMutate(_ context.Context, userID string, action domain.Action) (bool, error) {
	if g, ok := p.userGrants[userID]; ok {
		return g.allows(action), nil
	}
	return p.defaultGrant.allows(action), nil
}

// Users lists the users declared in the policy file, sorted by id.
func (p *Policy) Users() []domain.User {
	return append([]domain.User(nil), p.users...)
}
