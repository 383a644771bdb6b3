// Command seed loads a small demonstration curriculum into the knowledge
// graph: a grade-4 fractions strand with prerequisites and one decision
// node offering two alternative paths.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nexuslearn/nexus-api/internal/config"
	"github.com/nexuslearn/nexus-api/internal/domain"
)

// seedNode is one curriculum entry in the demo set. Prerequisites and
// branch targets are referenced by code so the set stays readable.
type seedNode struct {
	Code            string
	Title           string
	Domain          string
	GradeLevel      int
	Difficulty      int
	Prerequisites   []string
	ExclusiveChoice bool
}

type seedEdge struct {
	FromCode string
	ToCode   string
	Label    string
	MinLevel domain.MasteryLevel
}

var demoNodes = []seedNode{
	{Code: "MATH-4-FRAC-01", Title: "What is a fraction?", Domain: "math", GradeLevel: 4, Difficulty: 1},
	{Code: "MATH-4-FRAC-02", Title: "Equivalent fractions", Domain: "math", GradeLevel: 4, Difficulty: 2, Prerequisites: []string{"MATH-4-FRAC-01"}},
	{Code: "MATH-4-FRAC-03", Title: "Comparing fractions", Domain: "math", GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"MATH-4-FRAC-02"}, ExclusiveChoice: false},
	{Code: "MATH-4-FRAC-04A", Title: "Fractions on a number line", Domain: "math", GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"MATH-4-FRAC-03"}},
	{Code: "MATH-4-FRAC-04B", Title: "Fraction word problems", Domain: "math", GradeLevel: 4, Difficulty: 4, Prerequisites: []string{"MATH-4-FRAC-03"}},
	{Code: "MATH-4-DEC-01", Title: "Introducing decimals", Domain: "math", GradeLevel: 4, Difficulty: 2, Prerequisites: []string{"MATH-4-FRAC-02"}},
	{Code: "SCI-4-ECO-01", Title: "Food chains", Domain: "science", GradeLevel: 4, Difficulty: 1},
	{Code: "SCI-4-ECO-02", Title: "Ecosystems", Domain: "science", GradeLevel: 4, Difficulty: 2, Prerequisites: []string{"SCI-4-ECO-01"}},
}

var demoEdges = []seedEdge{
	{FromCode: "MATH-4-FRAC-03", ToCode: "MATH-4-FRAC-04A", Label: "visual path", MinLevel: domain.MasteryProficient},
	{FromCode: "MATH-4-FRAC-03", ToCode: "MATH-4-FRAC-04B", Label: "word problem path", MinLevel: domain.MasteryProficient},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed(ctx, db); err != nil {
		log.Fatalf("Failed to seed curriculum: %v", err)
	}

	log.Printf("Seeded %d nodes and %d branch edges", len(demoNodes), len(demoEdges))
}

func seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	idsByCode := make(map[string]uuid.UUID, len(demoNodes))
	for _, n := range demoNodes {
		idsByCode[n.Code] = uuid.New()
	}

	for _, n := range demoNodes {
		prereqIDs := make([]uuid.UUID, 0, len(n.Prerequisites))
		for _, code := range n.Prerequisites {
			id, ok := idsByCode[code]
			if !ok {
				return fmt.Errorf("node %s references unknown prerequisite %s", n.Code, code)
			}
			prereqIDs = append(prereqIDs, id)
		}
		prereqJSON, err := json.Marshal(prereqIDs)
		if err != nil {
			return fmt.Errorf("marshal prerequisites for %s: %w", n.Code, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO knowledge_nodes (id, code, title, domain, grade_level, difficulty, prerequisites, exclusive_choice, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (code) DO NOTHING`,
			idsByCode[n.Code], n.Code, n.Title, n.Domain, n.GradeLevel, n.Difficulty,
			prereqJSON, n.ExclusiveChoice, now,
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.Code, err)
		}
	}

	for _, e := range demoEdges {
		fromID, ok := idsByCode[e.FromCode]
		if !ok {
			return fmt.Errorf("edge references unknown node %s", e.FromCode)
		}
		toID, ok := idsByCode[e.ToCode]
		if !ok {
			return fmt.Errorf("edge references unknown node %s", e.ToCode)
		}

		condition := domain.UnlockCondition{
			MinLevel:        e.MinLevel,
			RequiredNodeIDs: []uuid.UUID{fromID},
		}
		conditionJSON, err := json.Marshal(condition)
		if err != nil {
			return fmt.Errorf("marshal condition for %s -> %s: %w", e.FromCode, e.ToCode, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO branch_edges (id, from_node_id, to_node_id, label, condition)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING`,
			uuid.New(), fromID, toID, e.Label, conditionJSON,
		)
		if err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", e.FromCode, e.ToCode, err)
		}
	}

	return tx.Commit()
}
