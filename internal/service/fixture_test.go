package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/cache"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/metrics"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service/servicetest"
)

type fixture struct {
	programs    *ProgramService
	progress    *ProgressService
	repo        *servicetest.ProgramRepo
	drafts      *servicetest.DraftCache
	cache       *servicetest.ProgressCache
	transcripts *servicetest.TranscriptRepo
	archive     *servicetest.Archive
	broadcaster *servicetest.Broadcaster
}

var fixedNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lru, err := cache.NewProgramLRU(16)
	require.NoError(t, err)

	f := &fixture{
		repo:        servicetest.NewProgramRepo(),
		drafts:      servicetest.NewDraftCache(),
		cache:       servicetest.NewProgressCache(),
		transcripts: servicetest.NewTranscriptRepo(),
		archive:     servicetest.NewArchive(),
		broadcaster: &servicetest.Broadcaster{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	f.programs = NewProgramService(f.repo, f.drafts, f.cache, lru, m, logger)
	f.programs.now = func() time.Time { return fixedNow }
	f.programs.SetBroadcaster(f.broadcaster)
	f.programs.SetArchive(f.archive)
	f.programs.SetCatalog(servicetest.NewCatalog(
		model.Course{Code: "CS 312", Title: "Algorithm Design", Credits: model.FixedCredits(3)},
		model.Course{Code: "CS 324", Title: "Systems Programming", Credits: model.FixedCredits(3)},
	))
	f.progress = NewProgressService(f.programs, f.transcripts, f.cache, m, logger)
	return f
}

const csMajor = `{"programRequirements":[
	{"requirementId":1,"description":"Core","type":"allOf","courses":[
		{"code":"CS 142","title":"Intro to Programming","credits":3},
		{"code":"CS 235","title":"Data Structures","credits":3}]},
	{"requirementId":2,"description":"Electives","type":"chooseNOf","constraints":{"n":1},"courses":[
		{"code":"CS 312","credits":3},
		{"code":"CS 324","credits":3}]}
]}`

func (f *fixture) createMajor(t *testing.T) *model.Program {
	t.Helper()
	p, err := f.programs.Create(context.Background(), "Computer Science", model.ProgramKindMajor, csMajor)
	require.NoError(t, err)
	return p
}
