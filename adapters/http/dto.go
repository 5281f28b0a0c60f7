package http

import (
	"time"

	"github.com/google/uuid"

	profileUC "github.com/khoahotran/portfolio-api/internal/application/usecase/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
)

// Auth DTOs

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type UserDTO struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	ProfileImage *string   `json:"profile_image"`
}

func ToUserDTO(u *user.User, profileImage *string) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: profileImage,
	}
}

// Profile DTOs

type ProfileDTO struct {
	ID                uuid.UUID          `json:"id"`
	User              uuid.UUID          `json:"user"`
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	FirstName         string             `json:"first_name"`
	LastName          string             `json:"last_name"`
	Title             string             `json:"title"`
	Bio               string             `json:"bio"`
	Location          string             `json:"location"`
	Phone             string             `json:"phone"`
	Website           string             `json:"website"`
	Github            string             `json:"github"`
	Linkedin          string             `json:"linkedin"`
	Twitter           string             `json:"twitter"`
	ProfileImage      *string            `json:"profile_image"`
	ProfileImageThumb *string            `json:"profile_image_thumbnail"`
	SkillCategories   []SkillCategoryDTO `json:"skill_categories"`
	Certifications    []CertificationDTO `json:"certifications"`
	Languages         []LanguageDTO      `json:"languages"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func ToProfileDTO(v *profileUC.ProfileView) ProfileDTO {
	p := v.Profile
	dto := ProfileDTO{
		ID:                p.ID,
		User:              v.User.ID,
		Username:          v.User.Username,
		Email:             v.User.Email,
		FirstName:         v.User.FirstName,
		LastName:          v.User.LastName,
		Title:             p.Title,
		Bio:               p.Bio,
		Location:          p.Location,
		Phone:             p.Phone,
		Website:           p.Website,
		Github:            p.Github,
		Linkedin:          p.Linkedin,
		Twitter:           p.Twitter,
		ProfileImage:      p.ImageURL,
		ProfileImageThumb: p.ImageThumbnailURL,
		UpdatedAt:         p.UpdatedAt,
	}
	dto.SkillCategories = ToSkillCategoryDTOs(v.SkillCategories)
	dto.Certifications = ToCertificationDTOs(v.Certifications)
	dto.Languages = ToLanguageDTOs(v.Languages)
	return dto
}

// Collection DTOs

type CertificationDTO struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Issuer     string    `json:"issuer"`
	Date       string    `json:"date"`
	InProgress bool      `json:"in_progress"`
	Badge      string    `json:"badge"`
	Type       string    `json:"type"`
}

func ToCertificationDTO(c *certification.Certification) CertificationDTO {
	return CertificationDTO{
		ID:         c.ID,
		Title:      c.Title,
		Issuer:     c.Issuer,
		Date:       c.Date,
		InProgress: c.InProgress,
		Badge:      c.Badge,
		Type:       string(c.Type),
	}
}

func ToCertificationDTOs(certs []*certification.Certification) []CertificationDTO {
	dtos := make([]CertificationDTO, len(certs))
	for i, c := range certs {
		dtos[i] = ToCertificationDTO(c)
	}
	return dtos
}

type UpdateCertificationRequest struct {
	Title      *string `json:"title"`
	Issuer     *string `json:"issuer"`
	Date       *string `json:"date"`
	Badge      *string `json:"badge"`
	Type       *string `json:"type"`
	InProgress *bool   `json:"in_progress"`
}

type LanguageDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Proficiency string    `json:"proficiency"`
}

func ToLanguageDTO(l *language.Language) LanguageDTO {
	return LanguageDTO{ID: l.ID, Name: l.Name, Proficiency: string(l.Proficiency)}
}

func ToLanguageDTOs(langs []*language.Language) []LanguageDTO {
	dtos := make([]LanguageDTO, len(langs))
	for i, l := range langs {
		dtos[i] = ToLanguageDTO(l)
	}
	return dtos
}

type UpdateLanguageRequest struct {
	Name        *string `json:"name"`
	Proficiency *string `json:"proficiency"`
}

type SkillDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Level    int       `json:"level"`
	Category uuid.UUID `json:"category"`
}

func ToSkillDTO(s *skill.Skill) SkillDTO {
	return SkillDTO{ID: s.ID, Name: s.Name, Level: s.Level, Category: s.CategoryID}
}

func ToSkillDTOs(skills []*skill.Skill) []SkillDTO {
	dtos := make([]SkillDTO, len(skills))
	for i, s := range skills {
		dtos[i] = ToSkillDTO(s)
	}
	return dtos
}

type SkillCategoryDTO struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Skills []SkillDTO `json:"skills"`
}

func ToSkillCategoryDTO(c *skill.Category) SkillCategoryDTO {
	dto := SkillCategoryDTO{ID: c.ID, Name: c.Name, Skills: make([]SkillDTO, len(c.Skills))}
	for i := range c.Skills {
		dto.Skills[i] = ToSkillDTO(&c.Skills[i])
	}
	return dto
}

func ToSkillCategoryDTOs(cats []*skill.Category) []SkillCategoryDTO {
	dtos := make([]SkillCategoryDTO, len(cats))
	for i, c := range cats {
		dtos[i] = ToSkillCategoryDTO(c)
	}
	return dtos
}

type RenameCategoryRequest struct {
	Name string `json:"name"`
}

// AddSkillRequest names its category either by id or by name.
type AddSkillRequest struct {
	Category     *uuid.UUID `json:"category"`
	CategoryName string     `json:"category_name"`
	Name         string     `json:"name"`
	Level        int        `json:"level"`
}

type UpdateSkillRequest struct {
	Name  *string `json:"name"`
	Level *int    `json:"level"`
}

// Project DTOs

type UpdateProjectRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Link         *string `json:"link"`
	Status       *string `json:"status"`
	Completion   *string `json:"completion"`
	Technologies *string `json:"technologies"`
	Type         *string `json:"type"`
}

type ProjectDTO struct {
	ID                uuid.UUID `json:"id"`
	Owner             uuid.UUID `json:"owner"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Link              *string   `json:"link"`
	Status            string    `json:"status"`
	Completion        string    `json:"completion"`
	Technologies      string    `json:"technologies"`
	Type              string    `json:"type"`
	Image             *string   `json:"image"`
	ImageThumbnailURL *string   `json:"image_thumbnail_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToProjectDTO(p *project.Project) ProjectDTO {
	return ProjectDTO{
		ID:                p.ID,
		Owner:             p.OwnerID,
		Name:              p.Name,
		Description:       p.Description,
		Link:              p.Link,
		Status:            p.Status,
		Completion:        p.Completion,
		Technologies:      p.Technologies,
		Type:              p.Type,
		Image:             p.ImageURL,
		ImageThumbnailURL: p.ThumbnailURL,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
