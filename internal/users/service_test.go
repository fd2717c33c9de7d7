package users

import (
	"context"
	"testing"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users       map[uuid.UUID]*models.User
	otherAdmins int64
	deleted     []uuid.UUID
	updates     map[string]any
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) Create(_ context.Context, dto CreateUserDTO) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == dto.Email {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	r.updates = fields
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) CountOtherAdmins(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.otherAdmins, nil
}

func buildUserService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, PasswordCfg: config.PasswordConfig{}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func adminUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "admin@example.com", IsActive: true, IsAdmin: true}
}

func plainUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "user@example.com", IsActive: true}
}

func TestListScopesToSelfForNonAdmins(t *testing.T) {
	admin := adminUser()
	member := plainUser()
	svc := buildUserService(t, newStubUserRepo(admin, member))

	all, err := svc.List(context.Background(), admin.ID, true)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin list = %d users, want 2", len(all))
	}

	own, err := svc.List(context.Background(), member.ID, false)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(own) != 1 || own[0].ID != member.ID {
		t.Fatalf("member list should contain only themselves")
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	existing := plainUser()
	svc := buildUserService(t, newStubUserRepo(existing))

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    existing.Email,
		Password: "supersecret",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}
}

func TestCreateNormalizesEmailAndHashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := buildUserService(t, repo)

	dto, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "  Casa@Example.COM ",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Email != "casa@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", dto.Email)
	}
	stored := repo.users[dto.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == "supersecret" {
		t.Fatalf("password was not hashed")
	}
}

func TestDeleteRejectsSelf(t *testing.T) {
	admin := adminUser()
	svc := buildUserService(t, newStubUserRepo(admin))

	err := svc.Delete(context.Background(), admin.ID, admin.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for self delete, got %v", err)
	}
}

func TestDeleteProtectsLastAdmin(t *testing.T) {
	actor := adminUser()
	target := adminUser()
	target.Email = "other-admin@example.com"
	repo := newStubUserRepo(actor, target)
	repo.otherAdmins = 0
	svc := buildUserService(t, repo)

	err := svc.Delete(context.Background(), actor.ID, target.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict protecting last admin, got %v", err)
	}

	repo.otherAdmins = 1
	if err := svc.Delete(context.Background(), actor.ID, target.ID); err != nil {
		t.Fatalf("delete with surviving admin: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != target.ID {
		t.Fatalf("target was not deleted")
	}
}

func TestUpdateProtectsLastAdminDemotion(t *testing.T) {
	target := adminUser()
	repo := newStubUserRepo(target)
	repo.otherAdmins = 0
	svc := buildUserService(t, repo)

	demote := false
	_, err := svc.Update(context.Background(), target.ID, UpdateUserRequest{IsAdmin: &demote})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict demoting last admin, got %v", err)
	}
}

func TestUpdateDeactivationOfNonAdminIsAllowed(t *testing.T) {
	target := plainUser()
	repo := newStubUserRepo(target)
	svc := buildUserService(t, repo)

	deactivate := false
	if _, err := svc.Update(context.Background(), target.ID, UpdateUserRequest{IsActive: &deactivate}); err != nil {
		t.Fatalf("deactivating non-admin: %v", err)
	}
	if v, ok := repo.updates["is_active"]; !ok || v != false {
		t.Fatalf("is_active update not applied")
	}
}

func TestGetForbiddenForOtherUsers(t *testing.T) {
	member := plainUser()
	other := plainUser()
	other.Email = "other@example.com"
	svc := buildUserService(t, newStubUserRepo(member, other))

	_, err := svc.Get(context.Background(), member.ID, false, other.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
