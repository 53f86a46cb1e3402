package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/config"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/repository"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

const sampleMajor = `{"programRequirements":[
	{"requirementId":1,"description":"Computer science core","type":"allOf","courses":[
		{"code":"CS 142","title":"Introduction to Computer Programming","credits":3,"terms":["Fall","Winter","Spring"]},
		{"code":"CS 235","title":"Data Structures and Algorithms","credits":3,"prerequisite":"CS 142"},
		{"code":"CS 236","title":"Discrete Structures","credits":3,"prerequisite":"CS 235"}]},
	{"requirementId":2,"description":"Systems elective","type":"chooseNOf","constraints":{"n":1},"courses":[
		{"code":"CS 324","title":"Systems Programming","credits":3},
		{"code":"CS 345","title":"Operating Systems Design","credits":3},
		{"code":"CS 460","title":"Computer Communications and Networking","credits":3}]},
	{"requirementId":3,"description":"Upper division electives","type":"creditBucket","constraints":{"minTotalCredits":9},"courses":[
		{"code":"CS 401R","title":"Special Topics","credits":{"min":1,"max":3}},
		{"code":"CS 452","title":"Database Modeling Concepts","credits":3},
		{"code":"CS 474","title":"Deep Learning","credits":3},
		{"code":"CS 478","title":"Machine Learning","credits":3}]},
	{"requirementId":4,"description":"Capstone","type":"noteOnly","notes":"Meet with an advisor the semester before enrolling.","steps":[
		"Submit the capstone application",
		"Join a project team"]}
]}`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Mongo.Database)

	structure, err := requirements.ParseJSON([]byte(sampleMajor))
	if err != nil {
		logger.Error("sample program does not parse", "error", err)
		os.Exit(1)
	}
	structure = requirements.RecomputeMetadata(structure, time.Now())
	if result := requirements.Validate(structure); !result.Valid {
		logger.Error("sample program is invalid", "errors", result.Errors)
		os.Exit(1)
	}

	now := time.Now().UTC()
	program := &model.Program{
		Name:             "Computer Science BS",
		Kind:             model.ProgramKindMajor,
		Requirements:     structure,
		PublishedVersion: 1,
		PublishedAt:      &now,
	}
	id, err := repository.NewProgramRepo(db).Create(ctx, program)
	if err != nil {
		logger.Error("failed to insert program", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded program", "program_id", id, "name", program.Name)

	transcript := &model.Transcript{
		StudentID:        "student_demo",
		CompletedCourses: []string{"CS 142", "CS 235", "CS 324", "CS 452"},
		UpdatedAt:        now,
	}
	if err := repository.NewTranscriptRepo(db).Save(ctx, transcript); err != nil {
		logger.Error("failed to insert transcript", "error", err)
		os.Exit(1)
	}
	logger.Info("seeded transcript", "student_id", transcript.StudentID, "courses", len(transcript.CompletedCourses))
}
