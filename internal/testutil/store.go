// Package testutil holds in-memory implementations of the repositories and
// services, for use-case and handler tests that should not need Postgres.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
)

type linkKey struct {
	profileID  uuid.UUID
	collection profile.Collection
}

type state struct {
	users      map[uuid.UUID]user.User
	profiles   map[uuid.UUID]profile.Profile
	links      map[linkKey][]uuid.UUID
	categories map[uuid.UUID]skill.Category
	skills     map[uuid.UUID]skill.Skill
	certs      map[uuid.UUID]certification.Certification
	langs      map[uuid.UUID]language.Language
	projects   map[uuid.UUID]project.Project
}

func newState() state {
	return state{
		users:      map[uuid.UUID]user.User{},
		profiles:   map[uuid.UUID]profile.Profile{},
		links:      map[linkKey][]uuid.UUID{},
		categories: map[uuid.UUID]skill.Category{},
		skills:     map[uuid.UUID]skill.Skill{},
		certs:      map[uuid.UUID]certification.Certification{},
		langs:      map[uuid.UUID]language.Language{},
		projects:   map[uuid.UUID]project.Project{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.links {
		c.links[k] = append([]uuid.UUID(nil), v...)
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.skills {
		c.skills[k] = v
	}
	for k, v := range s.certs {
		c.certs[k] = v
	}
	for k, v := range s.langs {
		c.langs[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	return c
}

// Store is a single in-memory database. Its repository views share state, and
// WithinTx restores a snapshot when fn fails.
type Store struct {
	mu sync.Mutex
	st state

	// ReplaceErr, when set, is returned by every LinkRepository.ReplaceAll call.
	ReplaceErr error
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() *UserRepo                   { return &UserRepo{s} }
func (s *Store) Profiles() *ProfileRepo             { return &ProfileRepo{s} }
func (s *Store) Links() *LinkRepo                   { return &LinkRepo{s} }
func (s *Store) Skills() *SkillRepo                 { return &SkillRepo{s} }
func (s *Store) Certifications() *CertificationRepo { return &CertificationRepo{s} }
func (s *Store) Languages() *LanguageRepo           { return &LanguageRepo{s} }
func (s *Store) Projects() *ProjectRepo             { return &ProjectRepo{s} }

// SeedUser inserts an account with an empty profile and returns both.
func (s *Store) SeedUser(username string) (*user.User, *profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	s.st.users[u.ID] = u
	p := profile.Profile{ID: uuid.New(), AccountID: u.ID, UpdatedAt: time.Now().UTC()}
	s.st.profiles[u.ID] = p
	return &u, &p
}

// SeedUserWithoutProfile inserts an account only.
func (s *Store) SeedUserWithoutProfile(username string) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{ID: uuid.New(), Username: username, Email: username + "@example.com"}
	s.st.users[u.ID] = u
	return &u
}

func (s *Store) CertificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.certs)
}

func (s *Store) LanguageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.langs)
}

func (s *Store) CategoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.categories)
}

func (s *Store) SkillCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.skills)
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.users {
		if existing.Username == u.Username {
			return apperror.NewConflict("user", "username", u.Username)
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return apperror.NewConflict("user", "email", u.Email)
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[u.ID]; !ok {
		return apperror.NewNotFound("user", u.ID.String())
	}
	for id, existing := range r.s.st.users {
		if id != u.ID && existing.Username == u.Username {
			return apperror.NewConflict("user", "username", u.Username)
		}
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user", id.String())
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

// Delete removes an account and everything it owns, like the cascade in the schema.
func (r *UserRepo) Delete(id uuid.UUID) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.users, id)
	if p, ok := r.s.st.profiles[id]; ok {
		for k := range r.s.st.links {
			if k.profileID == p.ID {
				delete(r.s.st.links, k)
			}
		}
		delete(r.s.st.profiles, id)
	}
}

type ProfileRepo struct{ s *Store }

func (r *ProfileRepo) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.profiles[accountID]
	if !ok {
		return nil, apperror.NewNotFound("profile", accountID.String())
	}
	return &p, nil
}

func (r *ProfileRepo) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*profile.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[accountID]; !ok {
		return nil, apperror.NewInvalidInput("account does not exist", nil)
	}
	p, ok := r.s.st.profiles[accountID]
	if !ok {
		p = profile.Profile{ID: uuid.New(), AccountID: accountID, UpdatedAt: time.Now().UTC()}
		r.s.st.profiles[accountID] = p
	}
	return &p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.profiles[p.AccountID]; !ok {
		return apperror.NewNotFound("profile", p.AccountID.String())
	}
	r.s.st.profiles[p.AccountID] = *p
	return nil
}

func (r *ProfileRepo) Delete(ctx context.Context, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.profiles[accountID]
	if !ok {
		return apperror.NewNotFound("profile", accountID.String())
	}
	for k := range r.s.st.links {
		if k.profileID == p.ID {
			delete(r.s.st.links, k)
		}
	}
	delete(r.s.st.profiles, accountID)
	return nil
}

type LinkRepo struct{ s *Store }

func (r *LinkRepo) exists(c profile.Collection, id uuid.UUID) bool {
	switch c {
	case profile.CollectionCertifications:
		_, ok := r.s.st.certs[id]
		return ok
	case profile.CollectionLanguages:
		_, ok := r.s.st.langs[id]
		return ok
	case profile.CollectionSkillCategories:
		_, ok := r.s.st.categories[id]
		return ok
	}
	return false
}

func (r *LinkRepo) Link(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.exists(c, itemID) {
		return apperror.NewInvalidInput("linked item does not exist", nil)
	}
	k := linkKey{profileID, c}
	for _, id := range r.s.st.links[k] {
		if id == itemID {
			return nil
		}
	}
	r.s.st.links[k] = append(r.s.st.links[k], itemID)
	return nil
}

func (r *LinkRepo) Unlink(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := linkKey{profileID, c}
	ids := r.s.st.links[k]
	for i, id := range ids {
		if id == itemID {
			r.s.st.links[k] = append(ids[:i:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *LinkRepo) ReplaceAll(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ReplaceErr != nil {
		return r.s.ReplaceErr
	}
	seen := make(map[uuid.UUID]bool, len(itemIDs))
	ids := make([]uuid.UUID, 0, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		if !r.exists(c, id) {
			return apperror.NewInvalidInput("linked item does not exist", nil)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	r.s.st.links[linkKey{profileID, c}] = ids
	return nil
}

func (r *LinkRepo) Contains(ctx context.Context, profileID uuid.UUID, c profile.Collection, itemID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.st.links[linkKey{profileID, c}] {
		if id == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (r *LinkRepo) ListIDs(ctx context.Context, profileID uuid.UUID, c profile.Collection) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]uuid.UUID{}, r.s.st.links[linkKey{profileID, c}]...), nil
}

func (r *LinkRepo) AccountsLinking(ctx context.Context, c profile.Collection, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	out := []uuid.UUID{}
	for accountID, p := range r.s.st.profiles {
		for _, id := range r.s.st.links[linkKey{p.ID, c}] {
			if wanted[id] {
				out = append(out, accountID)
				break
			}
		}
	}
	return out, nil
}

type SkillRepo struct{ s *Store }

func (r *SkillRepo) UpsertCategory(ctx context.Context, name string) (*skill.Category, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.categories {
		if c.Name == name {
			return &c, false, nil
		}
	}
	c := skill.Category{ID: uuid.New(), Name: name}
	r.s.st.categories[c.ID] = c
	return &c, true, nil
}

func (r *SkillRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*skill.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.categories[id]
	if !ok {
		return nil, apperror.NewNotFound("skill category", id.String())
	}
	c.Skills = r.skillsOf(c.ID)
	return &c, nil
}

func (r *SkillRepo) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.categories[id]
	if !ok {
		return apperror.NewNotFound("skill category", id.String())
	}
	for otherID, other := range r.s.st.categories {
		if otherID != id && other.Name == name {
			return apperror.NewConflict("skill category", "name", name)
		}
	}
	c.Name = name
	r.s.st.categories[id] = c
	return nil
}

func (r *SkillRepo) ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]*skill.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*skill.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.st.categories[id]; ok {
			c.Skills = r.skillsOf(c.ID)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *SkillRepo) skillsOf(categoryID uuid.UUID) []skill.Skill {
	out := []skill.Skill{}
	for _, sk := range r.s.st.skills {
		if sk.CategoryID == categoryID {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *SkillRepo) UpsertSkill(ctx context.Context, categoryID uuid.UUID, name string, level int) (*skill.Skill, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.categories[categoryID]; !ok {
		return nil, false, apperror.NewInvalidInput("skill category does not exist", nil)
	}
	for id, sk := range r.s.st.skills {
		if sk.CategoryID == categoryID && sk.Name == name {
			sk.Level = level
			r.s.st.skills[id] = sk
			return &sk, false, nil
		}
	}
	sk := skill.Skill{ID: uuid.New(), CategoryID: categoryID, Name: name, Level: level}
	r.s.st.skills[sk.ID] = sk
	return &sk, true, nil
}

func (r *SkillRepo) FindSkillByID(ctx context.Context, id uuid.UUID) (*skill.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sk, ok := r.s.st.skills[id]
	if !ok {
		return nil, apperror.NewNotFound("skill", id.String())
	}
	return &sk, nil
}

func (r *SkillRepo) UpdateSkill(ctx context.Context, sk *skill.Skill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.skills[sk.ID]; !ok {
		return apperror.NewNotFound("skill", sk.ID.String())
	}
	for id, other := range r.s.st.skills {
		if id != sk.ID && other.CategoryID == sk.CategoryID && other.Name == sk.Name {
			return apperror.NewConflict("skill", "name", sk.Name)
		}
	}
	r.s.st.skills[sk.ID] = *sk
	return nil
}

func (r *SkillRepo) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.skills[id]; !ok {
		return apperror.NewNotFound("skill", id.String())
	}
	delete(r.s.st.skills, id)
	return nil
}

func (r *SkillRepo) ListSkillsByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*skill.Skill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*skill.Skill{}
	for _, cid := range categoryIDs {
		for _, sk := range r.skillsOf(cid) {
			sk := sk
			out = append(out, &sk)
		}
	}
	return out, nil
}

type CertificationRepo struct{ s *Store }

func (r *CertificationRepo) Upsert(ctx context.Context, c *certification.Certification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.st.certs {
		if existing.Title == c.Title && existing.Issuer == c.Issuer {
			existing.Date = c.Date
			existing.Badge = c.Badge
			existing.Type = c.Type
			existing.InProgress = c.InProgress
			r.s.st.certs[id] = existing
			*c = existing
			return false, nil
		}
	}
	c.ID = uuid.New()
	r.s.st.certs[c.ID] = *c
	return true, nil
}

func (r *CertificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*certification.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.certs[id]
	if !ok {
		return nil, apperror.NewNotFound("certification", id.String())
	}
	return &c, nil
}

func (r *CertificationRepo) Update(ctx context.Context, c *certification.Certification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.certs[c.ID]; !ok {
		return apperror.NewNotFound("certification", c.ID.String())
	}
	for id, other := range r.s.st.certs {
		if id != c.ID && other.Title == c.Title && other.Issuer == c.Issuer {
			return apperror.NewConflict("certification", "title", c.Title)
		}
	}
	r.s.st.certs[c.ID] = *c
	return nil
}

func (r *CertificationRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*certification.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*certification.Certification, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.st.certs[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

type LanguageRepo struct{ s *Store }

func (r *LanguageRepo) Upsert(ctx context.Context, l *language.Language) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.langs {
		if existing.Name == l.Name && existing.Proficiency == l.Proficiency {
			*l = existing
			return false, nil
		}
	}
	l.ID = uuid.New()
	r.s.st.langs[l.ID] = *l
	return true, nil
}

func (r *LanguageRepo) FindByID(ctx context.Context, id uuid.UUID) (*language.Language, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.st.langs[id]
	if !ok {
		return nil, apperror.NewNotFound("language", id.String())
	}
	return &l, nil
}

func (r *LanguageRepo) Update(ctx context.Context, l *language.Language) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.langs[l.ID]; !ok {
		return apperror.NewNotFound("language", l.ID.String())
	}
	for id, other := range r.s.st.langs {
		if id != l.ID && other.Name == l.Name && other.Proficiency == l.Proficiency {
			return apperror.NewConflict("language", "name", l.Name)
		}
	}
	r.s.st.langs[l.ID] = *l
	return nil
}

func (r *LanguageRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*language.Language, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*language.Language, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.s.st.langs[id]; ok {
			out = append(out, &l)
		}
	}
	return out, nil
}

type ProjectRepo struct{ s *Store }

func (r *ProjectRepo) Save(ctx context.Context, p *project.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *project.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.projects[p.ID]; !ok {
		return apperror.NewNotFound("project", p.ID.String())
	}
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.projects[id]; !ok {
		return apperror.NewNotFound("project", id.String())
	}
	delete(r.s.st.projects, id)
	return nil
}

func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.projects[id]
	if !ok {
		return nil, apperror.NewNotFound("project", id.String())
	}
	return &p, nil
}

func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*project.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := []*project.Project{}
	for _, p := range r.s.st.projects {
		if p.OwnerID == ownerID {
			p := p
			all = append(all, &p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*project.Project{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
