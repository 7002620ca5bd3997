// Package seed fills a database with demo data for local development. All
// writes go through the service layer so hour totals and job activities stay
// consistent with what the API would produce.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/service"
	"momentum/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users             int
	ProjectsPerUser   int
	EntriesPerProject int
	JobsPerUser       int

	// Seed makes the generated content reproducible. Zero picks a random seed.
	Seed int64

	// Today anchors generated dates. Zero means the current day.
	Today models.Date
}

// DefaultOptions is a small but complete data set.
func DefaultOptions() Options {
	return Options{Users: 3, ProjectsPerUser: 2, EntriesPerProject: 10, JobsPerUser: 8}
}

// Result counts what Run created.
type Result struct {
	Users         int
	Projects      int
	DailyEntries  int
	WeeklyReviews int
	Jobs          int
	Activities    int
}

// Seeder creates demo data through the services.
type Seeder struct {
	opts     Options
	faker    *gofakeit.Faker
	rng      *rand.Rand
	users    *service.UserService
	projects *service.ProjectService
	daily    *service.DailyService
	weekly   *service.WeeklyService
	jobs     *service.JobService
}

// NewSeeder binds a Seeder to store.
func NewSeeder(store *repository.Store, opts Options) *Seeder {
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if opts.Today.IsZero() {
		opts.Today = models.Today()
	}
	return &Seeder{
		opts:     opts,
		faker:    gofakeit.New(opts.Seed),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		users:    service.NewUserService(store.Users),
		projects: service.NewProjectService(store, nil, nil),
		daily:    service.NewDailyService(store, nil, nil, nil, nil, storage.Limits{}),
		weekly:   service.NewWeeklyService(store),
		jobs:     service.NewJobService(store, nil),
	}
}

// Run creates opts.Users accounts with their projects, entries, reviews and applications.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	for i := 0; i < s.opts.Users; i++ {
		user, err := s.users.Register(ctx, service.RegisterInput{
			Email:    fmt.Sprintf("demo%d.%s", i+1, s.faker.Email()),
			Password: DefaultPassword,
			FullName: s.faker.Name(),
		})
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i+1, err)
		}
		res.Users++

		if err := s.seedProjects(ctx, user.ID, &res); err != nil {
			return res, err
		}
		if err := s.seedJobs(ctx, user.ID, &res); err != nil {
			return res, err
		}
		middleware.Logger.Info("seeded user", "email", user.Email)
	}
	return res, nil
}

// distinct draws from gen until it finds a value not in seen, numbering the
// last draw when retries run out.
func distinct(seen map[string]bool, gen func() string) string {
	name := gen()
	for i := 0; i < 3 && seen[name]; i++ {
		name = gen()
	}
	candidate := name
	for n := 2; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s %d", name, n)
	}
	seen[candidate] = true
	return candidate
}

func (s *Seeder) seedProjects(ctx context.Context, userID string, res *Result) error {
	names := make(map[string]bool, s.opts.ProjectsPerUser)
	for p := 0; p < s.opts.ProjectsPerUser; p++ {
		deadline := models.DateOf(s.opts.Today.AddDate(0, 0, s.rng.Intn(60)))
		project, err := s.projects.Create(ctx, userID, service.CreateProjectInput{
			Name:        distinct(names, s.faker.AppName),
			Description: s.faker.Sentence(12),
			Deadline:    &deadline,
			Subprojects: []string{"Backend", "Frontend"},
		})
		if err != nil {
			return fmt.Errorf("seed project: %w", err)
		}
		res.Projects++

		for d := 0; d < s.opts.EntriesPerProject; d++ {
			in := service.CreateDailyEntryInput{
				ProjectID:        project.ID,
				EntryDate:        models.DateOf(s.opts.Today.AddDate(0, 0, -d)),
				DailyFocus:       s.rng.Intn(3) > 0,
				WhatShippedToday: s.faker.Sentence(8),
				WhatSlowedDown:   s.faker.Sentence(6),
				HoursSpent:       float64(1+s.rng.Intn(16)) / 2,
				ProofLink:        s.faker.URL(),
			}
			if len(project.Subprojects) > 0 && s.rng.Intn(2) == 0 {
				in.SubprojectID = project.Subprojects[s.rng.Intn(len(project.Subprojects))].ID
			}
			if _, err := s.daily.Create(ctx, userID, in, nil); err != nil {
				return fmt.Errorf("seed daily entry: %w", err)
			}
			res.DailyEntries++
		}

		weeks := s.opts.EntriesPerProject / 7
		for w := 0; w < weeks; w++ {
			start := models.DateOf(s.opts.Today.AddDate(0, 0, -int(s.opts.Today.Weekday())-7*w))
			_, err := s.weekly.Create(ctx, userID, service.CreateWeeklyReviewInput{
				ProjectID:      project.ID,
				WeekStartDate:  start,
				WhatShipped:    s.faker.Sentence(10),
				WhatDistracted: s.faker.Sentence(5),
				WhatLearned:    s.faker.Sentence(10),
				HoursSpent:     float64(5 + s.rng.Intn(35)),
			})
			if err != nil {
				return fmt.Errorf("seed weekly review: %w", err)
			}
			res.WeeklyReviews++
		}
	}
	return nil
}

var activityFlow = []models.ActivityType{
	models.ActivityFollowUp,
	models.ActivityPhoneScreen,
	models.ActivityInterview,
	models.ActivityOffer,
}

func (s *Seeder) seedJobs(ctx context.Context, userID string, res *Result) error {
	companies := make(map[string]bool, s.opts.JobsPerUser)
	for j := 0; j < s.opts.JobsPerUser; j++ {
		applied := models.DateOf(s.opts.Today.AddDate(0, 0, -s.rng.Intn(120)))
		app, err := s.jobs.Create(ctx, userID, service.CreateJobInput{
			CompanyName:     distinct(companies, s.faker.Company),
			PositionTitle:   s.faker.JobTitle(),
			ApplicationDate: applied,
			ApplicationURL:  s.faker.URL(),
			Location:        s.faker.City(),
			RemoteOption:    s.faker.RandomString([]string{"remote", "hybrid", "onsite"}),
		})
		if err != nil {
			return fmt.Errorf("seed job: %w", err)
		}
		res.Jobs++
		res.Activities++

		steps := s.rng.Intn(len(activityFlow) + 1)
		for a := 0; a < steps; a++ {
			_, err := s.jobs.AddActivity(ctx, userID, app.ID, service.CreateActivityInput{
				ActivityType:  activityFlow[a],
				ActivityDate:  models.DateOf(applied.AddDate(0, 0, 3*(a+1))),
				ContactPerson: s.faker.Name(),
			})
			if err != nil {
				return fmt.Errorf("seed activity: %w", err)
			}
			res.Activities++
		}
	}
	return nil
}
