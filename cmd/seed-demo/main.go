package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/database"
	"github.com/evalhub/evalhub-backend/internal/logger"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/service"
)

// Seeds a demo teacher, a batch of examinees, a small question bank and one
// published exam. All accounts share the password below.
const demoPassword = "password123"

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	examService := service.NewExamService(examRepo, questionRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo, log)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}

	fmt.Println("=== Seeding Demo Data ===")

	// ─── Accounts ──────────────────────────────────────────────────────
	teacher := &model.User{
		Email:        "teacher@demo.evalhub.io",
		Name:         "Demo Teacher",
		Role:         model.RoleTeacher,
		PasswordHash: string(hash),
	}
	if err := userRepo.Create(ctx, teacher); err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo teacher")
	}
	fmt.Printf("Created teacher %s\n", teacher.Email)

	examineeNames := []string{
		"Alice Johnson", "Bruno Costa", "Chen Wei", "Diana Okafor", "Emre Aydin",
		"Fatima Hassan", "Georgi Ivanov", "Hana Sato", "Igor Petrov", "Julia Meyer",
	}
	for i, name := range examineeNames {
		examinee := &model.User{
			Email:        fmt.Sprintf("examinee%02d@demo.evalhub.io", i+1),
			Name:         name,
			Role:         model.RoleExaminee,
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, examinee); err != nil {
			log.Fatal().Err(err).Str("email", examinee.Email).Msg("Failed to create examinee")
		}
	}
	fmt.Printf("Created %d examinees\n", len(examineeNames))

	// ─── Question bank ─────────────────────────────────────────────────
	questions := []*model.Question{
		{
			OwnerID:  teacher.ID,
			Text:     "What is the capital of France?",
			Type:     model.QuestionSingleChoice,
			Options:  []string{"Paris", "London", "Berlin", "Madrid"},
			Correct:  model.TextAnswer("Paris"),
			Points:   10,
			Tags:     []string{"geography"},
			Category: "General Knowledge",
		},
		{
			OwnerID:  teacher.ID,
			Text:     "Which of the following are prime numbers?",
			Type:     model.QuestionMultiSelect,
			Options:  []string{"2", "3", "4", "9", "11"},
			Correct:  model.ListAnswer("2", "3", "11"),
			Points:   10,
			Tags:     []string{"math"},
			Category: "Mathematics",
		},
		{
			OwnerID:  teacher.ID,
			Text:     "The Earth orbits the Sun.",
			Type:     model.QuestionTrueFalse,
			Options:  []string{"True", "False"},
			Correct:  model.TextAnswer("True"),
			Points:   5,
			Category: "Science",
		},
		{
			OwnerID: teacher.ID,
			Text:    "Sort these numbers in ascending order.",
			Type:    model.QuestionOrdering,
			Options: []string{"1", "2", "3", "4"},
			Correct: model.ListAnswer("1", "2", "3", "4"),
			Points:  10,
		},
		{
			OwnerID: teacher.ID,
			Text:    "Briefly explain the water cycle.",
			Type:    model.QuestionEssay,
			Correct: model.TextAnswer("evaporation, condensation, precipitation"),
			Points:  15,
		},
	}

	for _, q := range questions {
		if err := questionService.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Str("text", q.Text).Msg("Failed to create question")
		}
	}
	fmt.Printf("Created %d questions\n", len(questions))

	// ─── Exam ──────────────────────────────────────────────────────────
	exam := &model.Exam{
		OwnerID:         teacher.ID,
		Title:           "General Knowledge Assessment",
		Description:     "A short mixed-type demo exam.",
		DurationMinutes: 30,
		Difficulty:      model.DifficultyEasy,
	}
	if err := examService.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo exam")
	}

	questionIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	if err := examService.SetQuestions(ctx, exam.ID, teacher.ID, questionIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to attach questions")
	}
	if err := examService.Publish(ctx, exam.ID, teacher.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish demo exam")
	}

	fmt.Printf("Published exam '%s' (%s)\n", exam.Title, exam.ID)
	fmt.Println("Done. All demo accounts use password:", demoPassword)
}
