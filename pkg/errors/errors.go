package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	// Validation failures.
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInvalidRating    Code = "INVALID_RATING"
	CodeCommentTooShort  Code = "COMMENT_TOO_SHORT"
	CodeDuplicateEmail   Code = "DUPLICATE_EMAIL"
	CodeDuplicateReview  Code = "DUPLICATE_REVIEW"
	CodeTermsNotAccepted Code = "TERMS_NOT_ACCEPTED"
	CodeInvalidStatus    Code = "INVALID_STATUS"

	// Authorization failures.
	CodeForbidden Code = "FORBIDDEN"
	CodeNotOwner  Code = "NOT_OWNER"

	// Missing entities.
	CodeNotFound            Code = "NOT_FOUND"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeStoreNotFound       Code = "STORE_NOT_FOUND"
	CodeProductNotFound     Code = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound       Code = "ORDER_NOT_FOUND"
	CodeApplicationNotFound Code = "APPLICATION_NOT_FOUND"
	CodeReviewNotFound      Code = "REVIEW_NOT_FOUND"

	// Business-rule failures.
	CodePurchaseRequired   Code = "PURCHASE_REQUIRED"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeProductUnavailable Code = "PRODUCT_UNAVAILABLE"
	CodeAlreadyReviewed    Code = "ALREADY_REVIEWED"
	CodeAlreadyReplied     Code = "ALREADY_REPLIED"
	CodeStatusTerminal     Code = "STATUS_TERMINAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeAccountDisabled    Code = "ACCOUNT_DISABLED"

	// Persistence failures.
	CodeImportShapeInvalid Code = "IMPORT_SHAPE_INVALID"

	CodeInternal Code = "INTERNAL_ERROR"
)

// Category groups codes for reporting and logging.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryAuthorization Category = "authorization"
	CategoryNotFound      Category = "not_found"
	CategoryBusinessRule  Category = "business_rule"
	CategoryPersistence   Category = "persistence"
	CategoryInternal      Category = "internal"
)

type Metadata struct {
	Category       Category
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:       {Category: CategoryValidation, PublicMessage: "validation failed", DetailsAllowed: true},
	CodeInvalidRating:    {Category: CategoryValidation, PublicMessage: "rating must be an integer between 1 and 5"},
	CodeCommentTooShort:  {Category: CategoryValidation, PublicMessage: "comment is too short"},
	CodeDuplicateEmail:   {Category: CategoryValidation, PublicMessage: "email is already registered"},
	CodeDuplicateReview:  {Category: CategoryValidation, PublicMessage: "review already exists for this target"},
	CodeTermsNotAccepted: {Category: CategoryValidation, PublicMessage: "terms and conditions must be accepted"},
	CodeInvalidStatus:    {Category: CategoryValidation, PublicMessage: "unknown status value", DetailsAllowed: true},

	CodeForbidden: {Category: CategoryAuthorization, PublicMessage: "access denied"},
	CodeNotOwner:  {Category: CategoryAuthorization, PublicMessage: "entity belongs to another store"},

	CodeNotFound:            {Category: CategoryNotFound, PublicMessage: "resource not found"},
	CodeUserNotFound:        {Category: CategoryNotFound, PublicMessage: "user not found"},
	CodeStoreNotFound:       {Category: CategoryNotFound, PublicMessage: "store not found"},
	CodeProductNotFound:     {Category: CategoryNotFound, PublicMessage: "product not found"},
	CodeOrderNotFound:       {Category: CategoryNotFound, PublicMessage: "order not found"},
	CodeApplicationNotFound: {Category: CategoryNotFound, PublicMessage: "application not found"},
	CodeReviewNotFound:      {Category: CategoryNotFound, PublicMessage: "review not found"},

	CodePurchaseRequired:   {Category: CategoryBusinessRule, PublicMessage: "a completed purchase is required"},
	CodeInsufficientStock:  {Category: CategoryBusinessRule, PublicMessage: "insufficient stock", DetailsAllowed: true},
	CodeEmptyCart:          {Category: CategoryBusinessRule, PublicMessage: "cart is empty"},
	CodeProductUnavailable: {Category: CategoryBusinessRule, PublicMessage: "product is not available", DetailsAllowed: true},
	CodeAlreadyReviewed:    {Category: CategoryBusinessRule, PublicMessage: "application already decided"},
	CodeAlreadyReplied:     {Category: CategoryBusinessRule, PublicMessage: "review already has a reply"},
	CodeStatusTerminal:     {Category: CategoryBusinessRule, PublicMessage: "order status can no longer change", DetailsAllowed: true},
	CodeInvalidCredentials: {Category: CategoryBusinessRule, PublicMessage: "invalid credentials"},
	CodeAccountDisabled:    {Category: CategoryBusinessRule, PublicMessage: "account is disabled"},

	CodeImportShapeInvalid: {Category: CategoryPersistence, PublicMessage: "snapshot is missing required collections", DetailsAllowed: true},

	CodeInternal: {Category: CategoryInternal, PublicMessage: "internal error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
