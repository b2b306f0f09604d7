package testutils

import (
	"fmt"

	"terminal-terrace/edustream/internal/model/access"
	"terminal-terrace/edustream/internal/model/content"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTestPermission creates a permission with a unique name
func CreateTestPermission(db *gorm.DB, opts ...PermissionOption) *access.Permission {
	perm := &access.Permission{
		Name: "test_perm_" + uuid.New().String()[:8],
	}
	for _, opt := range opts {
		opt(perm)
	}

	if err := db.Create(perm).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test permission: %v", err))
	}
	return perm
}

// PermissionOption configures test permission
type PermissionOption func(*access.Permission)

// WithPermissionName sets the permission name
func WithPermissionName(name string) PermissionOption {
	return func(p *access.Permission) {
		p.Name = name
	}
}

// WithDescription sets the description
func WithDescription(desc string) PermissionOption {
	return func(p *access.Permission) {
		p.Description = &desc
	}
}

// GrantRole links a permission to a role
func GrantRole(db *gorm.DB, role string, permissionID uuid.UUID) {
	row := &access.RolePermission{Role: role, PermissionID: permissionID}
	if err := db.Create(row).Error; err != nil {
		panic(fmt.Sprintf("Failed to grant role: %v", err))
	}
}

// AssignRole gives a user a role
func AssignRole(db *gorm.DB, userID uuid.UUID, role string) {
	row := &access.UserRole{UserID: userID, Role: role}
	if err := db.Create(row).Error; err != nil {
		panic(fmt.Sprintf("Failed to assign role: %v", err))
	}
}

// CreateTestVideo creates a pending video owned by userID
func CreateTestVideo(db *gorm.DB, userID uuid.UUID, opts ...VideoOption) *content.Video {
	video := &content.Video{
		UserID:   userID,
		Title:    "Test Video " + uuid.New().String(),
		VideoURL: "https://cdn.example.com/" + uuid.New().String() + ".mp4",
		Status:   content.StatusPending,
	}
	for _, opt := range opts {
		opt(video)
	}

	if err := db.Create(video).Error; err != nil {
		panic(fmt.Sprintf("Failed to create test video: %v", err))
	}
	return video
}

// VideoOption configures test video
type VideoOption func(*content.Video)

// WithVideoStatus sets the status
func WithVideoStatus(status string) VideoOption {
	return func(v *content.Video) {
		v.Status = status
	}
}

// WithVideoTitle sets the title
func WithVideoTitle(title string) VideoOption {
	return func(v *content.Video) {
		v.Title = title
	}
}
