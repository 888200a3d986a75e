package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrUsernameRequired    = errors.New("username is required")
	ErrStageNameRequired   = errors.New("stage name is required")
	ErrStageDateRequired   = errors.New("stage date is required")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrKickoffRequired     = errors.New("match kickoff time is required")
	ErrMatchSameTeams      = errors.New("home and away team must differ")
	ErrInvalidScore        = errors.New("scores must be non-negative integers")
	ErrMatchNotStarted     = errors.New("final score cannot be recorded before kickoff")
	ErrInvalidClassifyMode = errors.New("unknown classification mode")

	// Ошибки конфликтов
	ErrUsernameConflict     = errors.New("username is already in use")
	ErrPhoneConflict        = errors.New("phone is already in use")
	ErrStageNameConflict    = errors.New("stage name already exists")
	ErrTeamNameConflict     = errors.New("team name already exists")
	ErrStageHasMatches      = errors.New("stage cannot be deleted while it has matches")
	ErrMatchAlreadyFinished = errors.New("final score has already been recorded")

	// Ставка после начала матча: 423 Locked.
	ErrBetLocked = errors.New("betting is closed for this match")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound  = errors.New("user not found")
	ErrStageNotFound = errors.New("stage not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrMatchNotFound = errors.New("match not found")
	ErrBetNotFound   = errors.New("bet not found")

	ErrLogoUploadDisabled = errors.New("logo storage is not configured")
	ErrUnsupportedLogo    = errors.New("unsupported logo content type")
)
