// Package colors lists and renames catalog colors through a cached
// repository.
package colors

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/goliatone/go-order-catalog/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Namespace is the cache namespace of colors. Product color pages embed
// color names, so writes here also invalidate them.
const Namespace = "colors"

// ListFilter selects colors whose name contains Name.
type ListFilter struct {
	pagination.Request
	Name string `json:"name,omitempty"`
}

var _ pagination.Filter = ListFilter{}

func (f ListFilter) Normalize() ListFilter {
	f.Name = strings.TrimSpace(f.Name)
	f.Request = pagination.Paginate(f.Request, nil, nil)
	return f
}

func (f ListFilter) Window() pagination.Request { return f.Request }

func (f ListFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Request),
		validation.Field(&f.Name, validation.Length(0, 255)),
	)
}

func (f ListFilter) BuildPredicate(q *bun.SelectQuery) *bun.SelectQuery {
	if f.Name == "" {
		return q
	}
	return q.Where("LOWER(color.name) LIKE ? ESCAPE '!'", pagination.ContainsPattern(f.Name))
}

func (f ListFilter) CacheParams() map[string]any {
	params := f.Request.Params()
	params["name"] = f.Name
	return params
}

// Repository is satisfied by *repositorycache.CachedRepository[*model.Color].
type Repository interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*model.Color, error)
	Update(ctx context.Context, record *model.Color, criteria ...repository.UpdateCriteria) (*model.Color, error)
	ListPage(ctx context.Context, filter pagination.Filter) (pagination.Page[*model.Color], error)
}

type Service struct {
	repo   Repository
	logger logrus.FieldLogger
}

func NewService(repo Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, logger: logger.WithField("service", Namespace)}
}

// List returns one page of colors ordered by primary key.
func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*model.Color], error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return pagination.Page[*model.Color]{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid colors filter")
	}

	page, err := s.repo.ListPage(ctx, filter)
	if err != nil {
		return pagination.Page[*model.Color]{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list colors")
	}
	return page, nil
}

// Rename changes the name of a color.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) (*model.Color, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, validation.Required, validation.Length(1, 64)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid color name")
	}

	color, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to load color")
	}

	renamed := *color
	renamed.Name = name
	updated, err := s.repo.Update(ctx, &renamed)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rename color")
	}

	s.logger.WithFields(logrus.Fields{
		"color": id,
		"name":  name,
	}).Info("color renamed")
	return updated, nil
}
