package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

func ownedFilter(ownerID, id string) bson.M {
	return bson.M{"_id": id, "userId": ownerID}
}

// ListWorkouts implements domain.WorkoutRepository.
func (s *Store) ListWorkouts(ctx context.Context, ownerID string) ([]domain.Workout, error) {
	workouts, err := s.collection(ctx, workoutsCollection)
	if err != nil {
		return nil, err
	}
	cur, err := workouts.Find(ctx, bson.M{"userId": ownerID},
		options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Workout, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWorkout implements domain.WorkoutRepository.
func (s *Store) GetWorkout(ctx context.Context, ownerID, id string) (*domain.Workout, error) {
	workouts, err := s.collection(ctx, workoutsCollection)
	if err != nil {
		return nil, err
	}
	var w domain.Workout
	if err := workouts.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// CreateWorkout implements domain.WorkoutRepository.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	workouts, err := s.collection(ctx, workoutsCollection)
	if err != nil {
		return err
	}
	_, err = workouts.InsertOne(ctx, workout)
	return err
}

// ReplaceWorkout implements domain.WorkoutRepository. Identity and creation time are kept.
func (s *Store) ReplaceWorkout(ctx context.Context, workout domain.Workout) (*domain.Workout, error) {
	workouts, err := s.collection(ctx, workoutsCollection)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"name":      workout.Name,
		"startTime": workout.StartTime,
		"duration":  workout.Duration,
		"notes":     workout.Notes,
		"exercises": workout.Exercises,
		"updatedAt": workout.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if workout.EndTime != nil {
		set["endTime"] = workout.EndTime
	} else {
		update["$unset"] = bson.M{"endTime": ""}
	}

	var stored domain.Workout
	err = workouts.FindOneAndUpdate(ctx, ownedFilter(workout.UserID, workout.ID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &stored, nil
}

// DeleteWorkout implements domain.WorkoutRepository.
func (s *Store) DeleteWorkout(ctx context.Context, ownerID, id string) (bool, error) {
	workouts, err := s.collection(ctx, workoutsCollection)
	if err != nil {
		return false, err
	}
	res, err := workouts.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

// ListTemplates implements domain.TemplateRepository.
func (s *Store) ListTemplates(ctx context.Context, ownerID string) ([]domain.Template, error) {
	templates, err := s.collection(ctx, templatesCollection)
	if err != nil {
		return nil, err
	}
	cur, err := templates.Find(ctx, bson.M{"userId": ownerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Template, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTemplate implements domain.TemplateRepository.
func (s *Store) GetTemplate(ctx context.Context, ownerID, id string) (*domain.Template, error) {
	templates, err := s.collection(ctx, templatesCollection)
	if err != nil {
		return nil, err
	}
	var t domain.Template
	if err := templates.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// CreateTemplate implements domain.TemplateRepository.
func (s *Store) CreateTemplate(ctx context.Context, template domain.Template) error {
	templates, err := s.collection(ctx, templatesCollection)
	if err != nil {
		return err
	}
	_, err = templates.InsertOne(ctx, template)
	return err
}

// ReplaceTemplate implements domain.TemplateRepository.
func (s *Store) ReplaceTemplate(ctx context.Context, template domain.Template) (*domain.Template, error) {
	templates, err := s.collection(ctx, templatesCollection)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"name":      template.Name,
		"duration":  template.Duration,
		"notes":     template.Notes,
		"exercises": template.Exercises,
		"updatedAt": template.UpdatedAt,
	}}

	var stored domain.Template
	err = templates.FindOneAndUpdate(ctx, ownedFilter(template.UserID, template.ID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &stored, nil
}

// DeleteTemplate implements domain.TemplateRepository.
func (s *Store) DeleteTemplate(ctx context.Context, ownerID, id string) (bool, error) {
	templates, err := s.collection(ctx, templatesCollection)
	if err != nil {
		return false, err
	}
	res, err := templates.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
