package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
)

const defaultActivityLimit = 5

type (
	StudentSource interface {
		CountActive(ctx context.Context) (int, error)
		CountNewAdmissions(ctx context.Context) (int, error)
		Recent(ctx context.Context, limit int) ([]student.Student, error)
	}

	FeeSource interface {
		TotalCollected(ctx context.Context) (decimal.Decimal, error)
		TotalPending(ctx context.Context) (decimal.Decimal, error)
		CountPending(ctx context.Context) (int, error)
		RecentPayments(ctx context.Context, limit int) ([]fee.Payment, error)
	}

	InquirySource interface {
		CountPending(ctx context.Context) (int, error)
		Recent(ctx context.Context, limit int) ([]inquiry.Inquiry, error)
	}

	// StatsCache keeps computed Stats for a while.
	StatsCache interface {
		// GetStats returns false when no Stats are cached.
		GetStats(ctx context.Context) (Stats, bool, error)
		SetStats(ctx context.Context, stats Stats) error
	}

	Options struct {
		// SampleActivities makes RecentActivities return a fixed sample instead of the latest records.
		SampleActivities bool
		ActivityLimit    int
	}

	Service struct {
		students  StudentSource
		fees      FeeSource
		inquiries InquirySource
		cache     StatsCache // optional
		logger    core.Logger
		opts      Options
		nowFunc   func() time.Time
	}
)

func NewService(
	students StudentSource,
	fees FeeSource,
	inquiries InquirySource,
	cache StatsCache,
	logger core.Logger,
	opts Options,
) *Service {
	if opts.ActivityLimit <= 0 {
		opts.ActivityLimit = defaultActivityLimit
	}
	return &Service{
		students:  students,
		fees:      fees,
		inquiries: inquiries,
		cache:     cache,
		logger:    logger,
		opts:      opts,
		nowFunc:   time.Now,
	}
}

// Stats returns the dashboard statistics, from the cache when available.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	if svc.cache != nil {
		stats, ok, err := svc.cache.GetStats(ctx)
		if err != nil {
			svc.logger.Warn("reading cached dashboard stats", err)
		} else if ok {
			return stats, nil
		}
	}

	stats, err := svc.computeStats(ctx)
	if err != nil {
		return Stats{}, err
	}

	if svc.cache != nil {
		if err = svc.cache.SetStats(ctx, stats); err != nil {
			svc.logger.Warn("caching dashboard stats", err)
		}
	}
	return stats, nil
}

func (svc *Service) computeStats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.TotalStudents, err = svc.students.CountActive(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting active students")
	}
	if stats.NewAdmissions, err = svc.students.CountNewAdmissions(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting new admissions")
	}
	if stats.FeesCollected, err = svc.fees.TotalCollected(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "summing collected fees")
	}
	if stats.TotalPendingFees, err = svc.fees.TotalPending(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "summing pending fees")
	}
	if stats.PendingFees, err = svc.fees.CountPending(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting pending fees")
	}
	if stats.PendingInquiries, err = svc.inquiries.CountPending(ctx); err != nil {
		return Stats{}, errors.Wrap(err, "counting pending inquiries")
	}
	stats.LastUpdated = svc.nowFunc().UTC()
	return stats, nil
}

// RecentActivities returns the latest admissions, payments and inquiries, newest first.
func (svc *Service) RecentActivities(ctx context.Context) ([]RecentActivity, error) {
	now := svc.nowFunc().UTC()
	if svc.opts.SampleActivities {
		return sampleActivities(now), nil
	}

	limit := svc.opts.ActivityLimit
	activities := make([]RecentActivity, 0, 3*limit)

	students, err := svc.students.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent students")
	}
	for _, st := range students {
		activities = append(activities, newActivity(
			ActivityAdmission,
			fmt.Sprintf("New student %s admitted to %s", st.FullName(), st.Course),
			st.EnrollmentDate, now,
		))
	}

	payments, err := svc.fees.RecentPayments(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent payments")
	}
	for _, p := range payments {
		activities = append(activities, newActivity(
			ActivityPayment,
			fmt.Sprintf("Fee payment of %s received from %s", formatMoney(p.PaidAmount), p.StudentName),
			p.PaidDate.Time, now,
		))
	}

	inquiries, err := svc.inquiries.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent inquiries")
	}
	for _, inq := range inquiries {
		activities = append(activities, newActivity(
			ActivityInquiry,
			fmt.Sprintf("New inquiry from %s about %s", inq.Name, inq.Subject),
			inq.CreatedDate, now,
		))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func newActivity(typ, msg string, at, now time.Time) RecentActivity {
	return RecentActivity{
		Type:      typ,
		Message:   msg,
		Time:      RelativeTime(at, now),
		Timestamp: at.UTC(),
	}
}

// sampleActivities is a fixed, illustrative activity feed.
func sampleActivities(now time.Time) []RecentActivity {
	return []RecentActivity{
		newActivity(ActivityAdmission, "New student John Doe admitted to Computer Science", now.Add(-2*time.Hour), now),
		newActivity(ActivityPayment, "Fee payment of $1,500.00 received from Jane Smith", now.Add(-4*time.Hour), now),
		newActivity(ActivityInquiry, "New inquiry from Alex Johnson about scholarship programs", now.Add(-6*time.Hour), now),
		newActivity(ActivityAdmission, "New student Sarah Wilson admitted to Business Administration", now.AddDate(0, 0, -1), now),
		newActivity(ActivityPayment, "Fee payment of $2,000.00 received from Mike Davis", now.AddDate(0, 0, -2), now),
	}
}
