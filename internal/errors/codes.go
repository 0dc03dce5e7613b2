package errors

// Error codes returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // session token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // bad session or reset token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // session token logged out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthWrongPassword      = "AUTH_WRONG_PASSWORD"      // old password mismatch

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // resource belongs to another user

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed input
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // bad path id
	ValidationTooShort     = "VALIDATION_TOO_SHORT"     // below minimum length
	ValidationTooLong      = "VALIDATION_TOO_LONG"      // above maximum length
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing field

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // not found
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // duplicate
	ResourceConflict      = "RESOURCE_CONFLICT"       // constraint conflict

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // not png/jpg/jpeg
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // over the size limit
	UploadFailed          = "UPLOAD_FAILED"            // blob store rejected the upload

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // unexpected failure
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // store failure
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // downstream dependency failure
	InternalMailError     = "INTERNAL_MAIL_ERROR"     // email dispatch failure
)
