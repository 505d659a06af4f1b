// file: repository/recipe_repository.go

package repository

import (
	"database/sql"
	"nutritrack-api/logger"
	"nutritrack-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// IRecipeRepository defines the contract for recipe database operations.
// Status changes go through TransitionStatus exclusively so every transition
// is checked against the freshly-read row at write time.
type IRecipeRepository interface {
	Create(recipe *model.Recipe) error
	GetByID(id int) (*model.Recipe, error)
	GetPublished() ([]*model.Recipe, error)
	UpdateFields(id int, input *model.RecipeInput) error
	TransitionStatus(id int, from, to model.RecipeStatus, reviewNote string, publishedAt *time.Time) error
	Delete(id int) error
}

// RecipeRepository implements IRecipeRepository.
type RecipeRepository struct {
	DB *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{DB: db}
}

func (r *RecipeRepository) Create(recipe *model.Recipe) error {
	log := logger.Log.WithFields(logrus.Fields{
		"author_id": recipe.AuthorID,
		"title":     recipe.Title,
	})
	log.Info("Executing query to create a new recipe")

	query := `INSERT INTO recipes (author_id, title, description, status) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.DB.QueryRow(query, recipe.AuthorID, recipe.Title, recipe.Description, recipe.Status).
		Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create recipe query")
		return err
	}
	return nil
}

func (r *RecipeRepository) GetByID(id int) (*model.Recipe, error) {
	recipe := &model.Recipe{}
	query := `SELECT id, author_id, title, description, status, review_note, published_at, created_at, updated_at
		FROM recipes WHERE id = $1`
	err := r.DB.QueryRow(query, id).Scan(
		&recipe.ID, &recipe.AuthorID, &recipe.Title, &recipe.Description,
		&recipe.Status, &recipe.ReviewNote, &recipe.PublishedAt,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).WithField("recipe_id", id).Error("Failed to execute get recipe query")
		}
		return nil, err
	}
	return recipe, nil
}

func (r *RecipeRepository) GetPublished() ([]*model.Recipe, error) {
	query := `SELECT id, author_id, title, description, status, review_note, published_at, created_at, updated_at
		FROM recipes WHERE status = $1 ORDER BY published_at DESC`
	rows, err := r.DB.Query(query, model.StatusPublished)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list published recipes query")
		return nil, err
	}
	defer rows.Close()

	var recipes []*model.Recipe
	for rows.Next() {
		var rec model.Recipe
		if err := rows.Scan(
			&rec.ID, &rec.AuthorID, &rec.Title, &rec.Description,
			&rec.Status, &rec.ReviewNote, &rec.PublishedAt,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recipes = append(recipes, &rec)
	}
	return recipes, rows.Err()
}

// UpdateFields writes the editable recipe fields without touching status.
func (r *RecipeRepository) UpdateFields(id int, input *model.RecipeInput) error {
	query := `UPDATE recipes SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`
	res, err := r.DB.Exec(query, input.Title, input.Description, id)
	if err != nil {
		logger.Log.WithError(err).WithField("recipe_id", id).Error("Failed to execute update recipe query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TransitionStatus moves a recipe from one status to another with a
// conditional update. The WHERE clause re-checks the expected current status
// at write time, so a transition that lost a race affects zero rows and
// returns sql.ErrNoRows; the caller maps that to an invalid-transition error.
func (r *RecipeRepository) TransitionStatus(id int, from, to model.RecipeStatus, reviewNote string, publishedAt *time.Time) error {
	log := logger.Log.WithFields(logrus.Fields{
		"recipe_id": id,
		"from":      from,
		"to":        to,
	})
	log.Info("Executing recipe status transition")

	query := `UPDATE recipes
		SET status = $1, review_note = $2, published_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5`
	res, err := r.DB.Exec(query, to, reviewNote, publishedAt, id, from)
	if err != nil {
		log.WithError(err).Error("Failed to execute status transition query")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a recipe; child rows go with it via ON DELETE CASCADE.
func (r *RecipeRepository) Delete(id int) error {
	res, err := r.DB.Exec(`DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		logger.Log.WithError(err).WithField("recipe_id", id).Error("Failed to execute delete recipe query")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
