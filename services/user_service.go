package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"Gin_postgres_redis_asset_tool/apperr"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// SessionRevoker drops every refresh session a user holds.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type UserService struct {
	repo     *db.Repo
	sessions SessionRevoker
	log      *logrus.Logger
	now      func() time.Time
}

func NewUserService(repo *db.Repo, sessions SessionRevoker, log *logrus.Logger) *UserService {
	return &UserService{repo: repo, sessions: sessions, log: log, now: time.Now}
}

type CreateUserInput struct {
	FirstName  string
	LastName   string
	Type       models.UserType
	JoinedDate time.Time
}

// CreatedUser carries the generated one-time password next to the record.
type CreatedUser struct {
	User     *models.User `json:"user"`
	Password string       `json:"password"`
}

// BaseUsername is the lower-cased first name followed by the initial of
// every last-name word: "Binh", "Nguyen Van" gives "binhnv".
func BaseUsername(first, last string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.Join(strings.Fields(first), "")) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	for _, w := range strings.Fields(strings.ToLower(last)) {
		for _, r := range w {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
				break
			}
		}
	}
	return b.String()
}

// nextUsername returns base, or base plus the smallest unused numeric
// suffix greater than any existing one.
func nextUsername(base string, taken []string) string {
	exact := false
	var max int
	for _, t := range taken {
		if t == base {
			exact = true
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(t, base))
		if err == nil && n > max {
			max = n
		}
	}
	if !exact && max == 0 {
		return base
	}
	return base + strconv.Itoa(max+1)
}

// DefaultPassword is username@ddmmyyyy of the joined date.
func DefaultPassword(username string, joined time.Time) string {
	return username + "@" + joined.Format("02012006")
}

func (s *UserService) Create(ctx context.Context, c Caller, in CreateUserInput) (*CreatedUser, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, apperr.Invalid("first name and last name are required")
	}
	if in.Type == "" {
		in.Type = models.UserStaff
	}
	if in.Type != models.UserAdmin && in.Type != models.UserStaff {
		return nil, apperr.Invalid("unknown user type %q", in.Type)
	}
	if in.JoinedDate.IsZero() {
		in.JoinedDate = s.now().UTC()
	}
	base := BaseUsername(first, last)
	if base == "" {
		return nil, apperr.Invalid("name must contain letters")
	}

	for attempt := 0; attempt < 3; attempt++ {
		taken, err := s.repo.UsernamesWithPrefix(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("list usernames: %w", err)
		}
		username := nextUsername(base, taken)
		password := DefaultPassword(username, in.JoinedDate)
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u := &models.User{
			Username:           username,
			PasswordHash:       string(hash),
			FirstName:          first,
			LastName:           last,
			Type:               in.Type,
			LocationID:         c.LocationID,
			MustChangePassword: true,
			JoinedDate:         in.JoinedDate,
		}
		err = s.repo.CreateUser(ctx, u)
		if db.IsDuplicate(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.log.WithFields(logrus.Fields{"user": u.Username, "type": u.Type, "actor": c.UserID}).Info("user created")
		return &CreatedUser{User: u, Password: password}, nil
	}
	return nil, apperr.Conflict("could not allocate a username for %s %s", first, last)
}

func (s *UserService) List(ctx context.Context, c Caller, q db.UsersQuery) (db.ListUsersResult, error) {
	if err := c.requireAdmin(); err != nil {
		return db.ListUsersResult{}, err
	}
	q.LocationID = c.LocationID
	res, err := s.repo.ListUsers(ctx, q)
	if err != nil {
		return db.ListUsersResult{}, fmt.Errorf("list users: %w", err)
	}
	return res, nil
}

func (s *UserService) Get(ctx context.Context, c Caller, id uint) (*models.User, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := s.repo.FindUserInLocation(ctx, id, c.LocationID)
	if err != nil {
		return nil, lookup(err, "user %d not found", id)
	}
	return u, nil
}

// Disable refuses while the user still holds an asset.
func (s *UserService) Disable(ctx context.Context, c Caller, id uint) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	if id == c.UserID {
		return apperr.Conflict("you cannot disable yourself")
	}
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		u, err := tx.FindUserInLocation(ctx, id, c.LocationID)
		if err != nil {
			return lookup(err, "user %d not found", id)
		}
		held, err := tx.CountHeldByUser(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("count assignments: %w", err)
		}
		if held > 0 {
			return apperr.Conflict("user %s still has %d valid assignment(s)", u.Username, held)
		}
		return tx.SetUserDisabled(ctx, u.ID, true)
	})
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
		s.log.WithError(err).WithField("user", id).Warn("revoke sessions failed")
	}
	s.log.WithFields(logrus.Fields{"user": id, "actor": c.UserID}).Info("user disabled")
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, c Caller, oldPassword, newPassword string) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLen {
		return apperr.Invalid("password must be at least %d characters", minPasswordLen)
	}
	if newPassword == oldPassword {
		return apperr.Invalid("new password must differ from the old one")
	}
	u, err := s.repo.FindUserByID(ctx, c.UserID)
	if err != nil {
		return lookup(err, "user %d not found", c.UserID)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return apperr.Invalid("old password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
