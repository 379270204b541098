package models

import (
	"errors"

	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate = validator.New()

// Validator is implemented by every request body the API decodes
type Validator interface {
	Validate() error
}

// CreateFolderRequest represents the request to create a new folder
type CreateFolderRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id"`
}

// Validate checks required fields
func (r *CreateFolderRequest) Validate() error {
	if validate.Struct(r) != nil {
		return types.Validationf("Folder name is required.")
	}
	return nil
}

// RenameRequest represents the request to rename a node
type RenameRequest struct {
	NewName string `json:"newName" validate:"required"`
}

// Validate checks required fields
func (r *RenameRequest) Validate() error {
	if validate.Struct(r) != nil {
		return types.Validationf("New name is required.")
	}
	return nil
}

// MoveRequest represents the request to move a node. A missing or null
// destination moves the node to the root.
type MoveRequest struct {
	DestinationFolderID *string `json:"destinationFolderId"`
}

// Validate accepts every move request; destination checks need the store
func (r *MoveRequest) Validate() error {
	return nil
}

// ShareRequest represents the request to share a file with another user
type ShareRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Validate checks the recipient address
func (r *ShareRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		if failedOn(err, "required") {
			return types.Validationf("Recipient email is required.")
		}
		return types.Validationf("Recipient email is not a valid address.")
	}
	return nil
}

// CredentialsRequest represents a sign-up or sign-in request
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks both credentials are present and the email is well formed
func (r *CredentialsRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		if failedOn(err, "required") {
			return types.Validationf("Email and password are required.")
		}
		return types.Validationf("Email is not a valid address.")
	}
	return nil
}

// failedOn reports whether any field of a validator error failed on tag
func failedOn(err error, tag string) bool {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
