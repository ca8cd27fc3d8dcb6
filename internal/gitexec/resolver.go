package gitexec

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// Ops is the subset of repository operations base-commit resolution needs.
// *Client implements it; tests substitute fakes.
type Ops interface {
	FetchCommit(ctx context.Context, dir, ref string) error
	RevList(ctx context.Context, dir, ref string) ([]string, error)
	IsReachableFromBranch(ctx context.Context, dir, commit string) (bool, error)
	Parent(ctx context.Context, dir, ref string) (string, error)
}

// Resolver recovers the last commit that was still reachable from a live
// branch before a force push discarded history.
type Resolver struct {
	git    Ops
	logger hclog.Logger
}

// NewResolver returns a Resolver over the given repository operations.
func NewResolver(git Ops, logger hclog.Logger) *Resolver {
	return &Resolver{git: git, logger: logger}
}

// ResolveBaseCommit fetches ref into the workspace and walks its ancestor
// chain looking for the first commit still contained in any branch. If that
// commit is ref itself the force push never discarded it, so the base is
// ref's immediate parent instead. An empty result with a nil error means no
// pre-rewrite base could be established; callers scan from an empty base
// rather than aborting.
//
// Errors from the initial fetch surface unwrapped so callers can distinguish
// an unknown ref (skip this event) from a broken workspace (abort the
// repository).
func (r *Resolver) ResolveBaseCommit(ctx context.Context, dir, ref string) (string, error) {
	if err := r.git.FetchCommit(ctx, dir, ref); err != nil {
		return "", err
	}

	ancestors, err := r.git.RevList(ctx, dir, ref)
	if err != nil {
		return "", err
	}

	for _, commit := range ancestors {
		live, err := r.git.IsReachableFromBranch(ctx, dir, commit)
		if err != nil {
			return "", err
		}
		if !live {
			continue
		}
		if commit != ref {
			return commit, nil
		}

		// The pushed-over commit is still reachable, so no rewrite actually
		// happened here; scan from its parent. A root commit has none.
		parent, err := r.git.Parent(ctx, dir, ref)
		if err != nil {
			r.logger.Debug("parent lookup failed, no base", "ref", ref, "error", err)
			return "", nil
		}
		return parent, nil
	}

	r.logger.Debug("no live ancestor found", "ref", ref)
	return "", nil
}
