package oneroster

import (
	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/tidwall/gjson"
)

// MapperOptions carry client-wide settings that affect record mapping.
type MapperOptions struct {
	// UsernameSource selects the username of user records. See
	// Config.UsernameSource.
	UsernameSource string
}

// School is an org of type school.
type School struct {
	UID      *string
	Name     *string
	Number   *string
	TenantID *string
}

// NewSchool maps a OneRoster org object to a School.
func NewSchool(obj gjson.Result) School {
	return School{
		UID:      stringField(obj, "sourcedId"),
		Name:     stringField(obj, "name"),
		Number:   stringField(obj, "identifier"),
		TenantID: stringField(obj, "parent.sourcedId"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (s School) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"uid":       optional(s.UID),
		"name":      optional(s.Name),
		"number":    optional(s.Number),
		"tenant_id": optional(s.TenantID),
	}
}

// Tenant is an org that owns schools, such as a district.
type Tenant struct {
	UID      *string
	Name     *string
	Number   *string
	TenantID *string
}

// NewTenant maps a OneRoster org object to a Tenant. TenantID is the first
// org-typed entry of the parent array.
func NewTenant(obj gjson.Result) Tenant {
	return Tenant{
		UID:      stringField(obj, "sourcedId"),
		Name:     stringField(obj, "name"),
		Number:   stringField(obj, "identifier"),
		TenantID: firstOrgID(obj, "parent"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (t Tenant) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"uid":       optional(t.UID),
		"name":      optional(t.Name),
		"number":    optional(t.Number),
		"tenant_id": optional(t.TenantID),
	}
}

// Student is a user with the student role.
type Student struct {
	UID       *string
	FirstName *string
	LastName  *string
	Username  *string
	Provider  string
	Email     *string
	Grades    []string
	SchoolID  *string
}

// NewStudent maps a OneRoster user object to a Student.
func NewStudent(obj gjson.Result, opts MapperOptions) Student {
	uid := stringField(obj, "sourcedId")
	email := stringField(obj, "email")

	return Student{
		UID:       uid,
		FirstName: stringField(obj, "givenName"),
		LastName:  stringField(obj, "familyName"),
		Username:  resolveUsername(obj, opts.UsernameSource, uid, email),
		Provider:  constants.Provider,
		Email:     email,
		Grades:    stringsField(obj, "grades"),
		SchoolID:  firstOrgID(obj, "orgs"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (s Student) ToMap() map[string]interface{} {
	var grades interface{}
	if s.Grades != nil {
		grades = append([]string(nil), s.Grades...)
	}

	return map[string]interface{}{
		"uid":        optional(s.UID),
		"first_name": optional(s.FirstName),
		"last_name":  optional(s.LastName),
		"username":   optional(s.Username),
		"provider":   s.Provider,
		"email":      optional(s.Email),
		"grades":     grades,
		"school_id":  optional(s.SchoolID),
	}
}

// Teacher is a user with the teacher role.
type Teacher struct {
	UID       *string
	FirstName *string
	LastName  *string
	Username  *string
	Provider  string
	Email     *string
	SchoolID  *string
}

// NewTeacher maps a OneRoster user object to a Teacher.
func NewTeacher(obj gjson.Result, opts MapperOptions) Teacher {
	uid := stringField(obj, "sourcedId")
	email := stringField(obj, "email")

	return Teacher{
		UID:       uid,
		FirstName: stringField(obj, "givenName"),
		LastName:  stringField(obj, "familyName"),
		Username:  resolveUsername(obj, opts.UsernameSource, uid, email),
		Provider:  constants.Provider,
		Email:     email,
		SchoolID:  firstOrgID(obj, "orgs"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (t Teacher) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"uid":        optional(t.UID),
		"first_name": optional(t.FirstName),
		"last_name":  optional(t.LastName),
		"username":   optional(t.Username),
		"provider":   t.Provider,
		"email":      optional(t.Email),
		"school_id":  optional(t.SchoolID),
	}
}

// Class is a section taught at a school.
type Class struct {
	UID       *string
	Title     *string
	ClassCode *string
	SchoolID  *string
	TermIDs   []string
}

// NewClass maps a OneRoster class object to a Class.
func NewClass(obj gjson.Result) Class {
	return Class{
		UID:       stringField(obj, "sourcedId"),
		Title:     stringField(obj, "title"),
		ClassCode: stringField(obj, "classCode"),
		SchoolID:  stringField(obj, "school.sourcedId"),
		TermIDs:   refIDs(obj, "terms"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (c Class) ToMap() map[string]interface{} {
	var terms interface{}
	if c.TermIDs != nil {
		terms = append([]string(nil), c.TermIDs...)
	}

	return map[string]interface{}{
		"uid":        optional(c.UID),
		"title":      optional(c.Title),
		"class_code": optional(c.ClassCode),
		"school_id":  optional(c.SchoolID),
		"term_ids":   terms,
	}
}

// Enrollment links a user to a class.
type Enrollment struct {
	UID      *string
	Role     *string
	UserID   *string
	ClassID  *string
	SchoolID *string
	Primary  *bool
}

// NewEnrollment maps a OneRoster enrollment object to an Enrollment.
func NewEnrollment(obj gjson.Result) Enrollment {
	return Enrollment{
		UID:      stringField(obj, "sourcedId"),
		Role:     stringField(obj, "role"),
		UserID:   stringField(obj, "user.sourcedId"),
		ClassID:  stringField(obj, "class.sourcedId"),
		SchoolID: stringField(obj, "school.sourcedId"),
		Primary:  boolField(obj, "primary"),
	}
}

// ToMap returns every field keyed by name; absent values are nil.
func (e Enrollment) ToMap() map[string]interface{} {
	var primary interface{}
	if e.Primary != nil {
		primary = *e.Primary
	}

	return map[string]interface{}{
		"uid":       optional(e.UID),
		"role":      optional(e.Role),
		"user_id":   optional(e.UserID),
		"class_id":  optional(e.ClassID),
		"school_id": optional(e.SchoolID),
		"primary":   primary,
	}
}

// resolveUsername picks the first non-blank of the configured source, the
// email and the uid.
func resolveUsername(obj gjson.Result, source string, uid, email *string) *string {
	if username := presence(usernameFrom(obj, source, uid)); username != nil {
		return username
	}

	if email := presence(email); email != nil {
		return email
	}

	return uid
}

func usernameFrom(obj gjson.Result, source string, uid *string) *string {
	switch source {
	case "":
		return nil
	case "sourcedId":
		return uid
	case "username":
		return literalField(obj, "username")
	default:
		return literalField(obj, source)
	}
}

func presence(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}

	return value
}

// stringField reads a gjson path; missing and null values are absent.
func stringField(obj gjson.Result, path string) *string {
	return scalar(obj.Get(path))
}

// literalField reads a top-level key without path syntax.
func literalField(obj gjson.Result, key string) *string {
	if !obj.IsObject() {
		return nil
	}

	value, ok := obj.Map()[key]
	if !ok {
		return nil
	}

	return scalar(value)
}

func scalar(result gjson.Result) *string {
	if !result.Exists() || result.Type == gjson.Null || result.IsObject() || result.IsArray() {
		return nil
	}

	value := result.String()

	return &value
}

func boolField(obj gjson.Result, path string) *bool {
	result := obj.Get(path)

	var value bool

	switch result.Type {
	case gjson.True:
		value = true
	case gjson.False:
		value = false
	case gjson.String:
		switch result.Str {
		case "true":
			value = true
		case "false":
			value = false
		default:
			return nil
		}
	default:
		return nil
	}

	return &value
}

func stringsField(obj gjson.Result, path string) []string {
	result := obj.Get(path)
	if !result.IsArray() {
		return nil
	}

	values := []string{}

	for _, item := range result.Array() {
		if value := scalar(item); value != nil {
			values = append(values, *value)
		}
	}

	return values
}

// firstOrgID returns the sourcedId of the first element of the array at key
// whose type is "org".
func firstOrgID(obj gjson.Result, key string) *string {
	result := obj.Get(key)
	if !result.IsArray() {
		return nil
	}

	for _, item := range result.Array() {
		if item.Get("type").String() == "org" {
			return stringField(item, "sourcedId")
		}
	}

	return nil
}

func refIDs(obj gjson.Result, key string) []string {
	result := obj.Get(key)
	if !result.IsArray() {
		return nil
	}

	ids := []string{}

	for _, item := range result.Array() {
		if id := stringField(item, "sourcedId"); id != nil {
			ids = append(ids, *id)
		}
	}

	return ids
}

func optional[T any](value *T) interface{} {
	if value == nil {
		return nil
	}

	return *value
}
