package service

import (
	"context"
	"sort"
	"strings"

	"timebank/internal/models"
	"timebank/internal/repository"
)

const (
	sameCityScore   = 50
	skillMatchScore = 30
	suggestionCount = 3
	exploreWindow   = 200
)

// ScoredTask is an open task ranked for a viewer.
type ScoredTask struct {
	models.Task
	MatchScore int `json:"match_score"`
}

// ExploreFilter narrows the explore listing.
type ExploreFilter struct {
	Category string
	Kind     models.TaskKind
	Search   string
}

// Dashboard is the landing summary for a user.
type Dashboard struct {
	User        *models.User  `json:"user"`
	ActiveTasks []models.Task `json:"active_tasks"`
	Suggestions []models.Task `json:"suggested_tasks"`
	TotalUnread int           `json:"total_unread"`
}

var activeStatuses = []models.TaskStatus{
	models.TaskStatusOpen,
	models.TaskStatusInProgress,
	models.TaskStatusPendingValidation,
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*models.Task, error) {
	return s.repos.Tasks.GetByID(ctx, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	return s.repos.Tasks.List(ctx, filter)
}

// MyTasks lists tasks the actor created or is assigned to, newest first.
func (s *TaskService) MyTasks(ctx context.Context, actorID uint, statuses []models.TaskStatus) ([]models.Task, error) {
	return s.repos.Tasks.List(ctx, repository.TaskFilter{Involving: actorID, Statuses: statuses})
}

// ListHireRequests returns a task's hire requests to its creator.
func (s *TaskService) ListHireRequests(ctx context.Context, actorID, taskID uint) ([]models.HireRequest, error) {
	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCreator(actorID) {
		return nil, models.NewForbiddenError("only the task creator can see hire requests")
	}
	return s.repos.HireRequests.ListByTask(ctx, taskID)
}

// matchScore ranks a task for a viewer: same city, plus each skill found in
// the task text or naming its category.
func matchScore(t *models.Task, viewer *models.User) int {
	score := 0
	if viewer.City != "" && t.City == viewer.City {
		score += sameCityScore
	}
	text := strings.ToLower(t.Title + " " + t.Description)
	for _, skill := range viewer.Skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if strings.Contains(text, skill) || strings.EqualFold(t.Category, skill) {
			score += skillMatchScore
		}
	}
	return score
}

func skillMatch(t *models.Task, skills []string) bool {
	text := strings.ToLower(t.Title + " " + t.Description)
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill != "" && strings.Contains(text, skill) {
			return true
		}
	}
	return false
}

// Explore lists open tasks by other users, best match first and newest first
// within a score.
func (s *TaskService) Explore(ctx context.Context, actorID uint, f ExploreFilter) ([]ScoredTask, error) {
	viewer, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repos.Tasks.List(ctx, repository.TaskFilter{
		Statuses:       []models.TaskStatus{models.TaskStatusOpen},
		ExcludeCreator: actorID,
		Category:       f.Category,
		Kind:           f.Kind,
		Search:         f.Search,
		Limit:          exploreWindow,
	})
	if err != nil {
		return nil, err
	}

	out := make([]ScoredTask, len(tasks))
	for i := range tasks {
		out[i] = ScoredTask{Task: tasks[i], MatchScore: matchScore(&tasks[i], viewer)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchScore > out[j].MatchScore })
	return out, nil
}

// Dashboard gathers the actor's balance, active tasks, suggestions in their
// city and unread total.
func (s *TaskService) Dashboard(ctx context.Context, actorID uint) (*Dashboard, error) {
	user, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	active, err := s.repos.Tasks.List(ctx, repository.TaskFilter{Involving: actorID, Statuses: activeStatuses})
	if err != nil {
		return nil, err
	}

	suggestions := []models.Task{}
	if user.City != "" && len(user.Skills) > 0 {
		open, err := s.repos.Tasks.List(ctx, repository.TaskFilter{
			City:           user.City,
			Statuses:       []models.TaskStatus{models.TaskStatusOpen},
			ExcludeCreator: actorID,
		})
		if err != nil {
			return nil, err
		}
		for i := range open {
			if skillMatch(&open[i], user.Skills) {
				suggestions = append(suggestions, open[i])
				if len(suggestions) == suggestionCount {
					break
				}
			}
		}
	}

	unread, err := s.repos.Chats.TotalUnread(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: user, ActiveTasks: active, Suggestions: suggestions, TotalUnread: unread}, nil
}
