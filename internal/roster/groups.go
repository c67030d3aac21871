package roster

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/rollcall/internal/model"
)

// Groups returns the groups in insertion order.
func (s *Service) Groups(ctx context.Context) model.Groups {
	return s.repo.Load(ctx).Groups
}

// GroupNames returns the group names in insertion order.
func (s *Service) GroupNames(ctx context.Context) []string {
	return s.repo.Load(ctx).Groups.Names()
}

// AddGroup creates an empty group.
func (s *Service) AddGroup(ctx context.Context, name string) bool {
	name = model.NormalizeName(name)
	if name == "" {
		return s.reject("group name cannot be empty")
	}

	d := s.repo.Load(ctx)
	if !d.Groups.Add(name) {
		return s.reject("group %q already exists", name)
	}

	s.log.Debug("adding group", zap.String("group", name))
	return s.commit(ctx, d, fmt.Sprintf("group %q added", name), "add group")
}

// RemoveGroup deletes a group that has no members.
func (s *Service) RemoveGroup(ctx context.Context, name string) bool {
	name = model.NormalizeName(name)
	d := s.repo.Load(ctx)

	g, ok := d.Groups.Get(name)
	if !ok {
		return s.reject("group %q not found", name)
	}
	if len(g.Members) > 0 {
		return s.reject("group %q still has %d students", name, len(g.Members))
	}

	d.Groups.Delete(name)
	return s.commit(ctx, d, fmt.Sprintf("group %q removed", name), "remove group")
}
