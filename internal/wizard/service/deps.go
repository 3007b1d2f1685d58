package service

import (
	"context"
	"time"

	"github.com/makerhub/innovation-wizard/internal/ai"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/projects"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/draftstore"
	"github.com/makerhub/innovation-wizard/internal/wizard/launchlog"
	"github.com/makerhub/innovation-wizard/internal/wizard/taxonomy"
)

type Classifier interface {
	Classify(ctx context.Context, req ai.ClassifyRequest) (ai.ClassificationResult, error)
}

type TeamSuggester interface {
	SuggestTeam(ctx context.Context, req ai.TeamSuggestRequest) (ai.TeamSuggestionResult, error)
}

type Submitter interface {
	Submit(ctx context.Context, draft domain.ProjectDraft) (*projects.CreatedProject, error)
}

type LaunchRecorder interface {
	Record(ctx context.Context, e launchlog.Entry) error
}

// DraftStore is satisfied by *draftstore.Store.
type DraftStore interface {
	Load(ctx context.Context, key draftstore.Key, dst draftstore.Versioned) (bool, error)
	Save(ctx context.Context, key draftstore.Key, rec draftstore.Versioned) error
	Clear(ctx context.Context, key draftstore.Key) error
}

// Deps are the collaborators shared by every session. Notifier, Launches and
// Taxonomy are optional.
type Deps struct {
	Store      DraftStore
	Classifier Classifier
	Teams      TeamSuggester
	Submitter  Submitter
	Launches   LaunchRecorder
	Notifier   notify.Notifier
	Taxonomy   *taxonomy.Taxonomy
}

type Config struct {
	JumpPolicy        domain.JumpPolicy
	AITimeout         time.Duration
	SubmitTimeout     time.Duration
	NotificationLimit int
}

func (c Config) withDefaults() Config {
	if c.JumpPolicy == "" {
		c.JumpPolicy = domain.JumpReachable
	}
	if c.AITimeout <= 0 {
		c.AITimeout = async.DefaultTimeout
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = projects.DefaultTimeout
	}
	if c.NotificationLimit <= 0 {
		c.NotificationLimit = notify.DefaultRecorderSize
	}
	return c
}

// Owner is the authenticated user a session belongs to.
type Owner struct {
	ID          string
	DisplayName string
	Email       string
}

func (o Owner) member() domain.TeamMember {
	name := o.DisplayName
	if name == "" {
		name = o.ID
	}
	return domain.TeamMember{MemberID: o.ID, DisplayName: name, Email: o.Email}
}

// outbound pairs a request body with the caller's credentials.
type outbound[T any] struct {
	Body   T
	caller auth.Carrier
}

func newOutbound[T any](ctx context.Context, body T) outbound[T] {
	return outbound[T]{Body: body, caller: auth.Carry(ctx)}
}

func (o outbound[T]) bind(ctx context.Context) context.Context {
	return o.caller.Bind(ctx)
}
