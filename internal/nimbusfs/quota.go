package nimbusfs

import (
	"context"
	"errors"

	"github.com/Project-Sylos/Nimbus/internal/types"
)

// planLimit returns the byte quota of plan. Unknown plans use the free limit.
func (s *Service) planLimit(plan types.Plan) int64 {
	if limit, ok := s.opts.PlanLimits[plan]; ok {
		return limit
	}
	return s.opts.PlanLimits[types.PlanFree]
}

// plan returns the caller's plan. A missing profile means free.
func (u *Session) plan(ctx context.Context) (types.Plan, error) {
	profile, err := u.svc.store.GetProfile(ctx, u.userID)
	if errors.Is(err, types.ErrNotFound) {
		return types.PlanFree, nil
	}
	if err != nil {
		return "", err
	}
	return profile.Plan, nil
}

// Usage computes the caller's storage usage from scratch together with the
// plan and its limit.
func (u *Session) Usage(ctx context.Context) (*types.StorageUsage, error) {
	plan, err := u.plan(ctx)
	if err != nil {
		return nil, err
	}

	total, err := u.svc.store.SumFileSizes(ctx, u.userID)
	if err != nil {
		return nil, err
	}

	return &types.StorageUsage{
		TotalUsage: total,
		Plan:       plan,
		Limit:      u.svc.planLimit(plan),
	}, nil
}

// AdmitUpload rejects with QuotaExceeded when usage + size would exceed the
// plan limit. The check is not atomic with the write that follows it, so
// concurrent uploads by the same user can overshoot the limit.
func (u *Session) AdmitUpload(ctx context.Context, size int64) error {
	usage, err := u.Usage(ctx)
	if err != nil {
		return err
	}

	if usage.TotalUsage+size > usage.Limit {
		u.svc.metrics.QuotaRejected(string(usage.Plan))
		return types.QuotaExceededf("Storage limit exceeded. Upgrade to Pro for more space.")
	}
	return nil
}
