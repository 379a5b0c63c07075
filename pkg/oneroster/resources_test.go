package oneroster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewSchool(t *testing.T) {
	t.Parallel()

	school := NewSchool(gjson.Parse(`{
		"sourcedId": "s1",
		"name": "Lincoln High",
		"identifier": "042",
		"parent": {"sourcedId": "z"}
	}`))

	require.NotNil(t, school.TenantID)
	assert.Equal(t, "z", *school.TenantID)
	assert.Equal(t, "s1", *school.UID)
	assert.Equal(t, "Lincoln High", *school.Name)
	assert.Equal(t, "042", *school.Number)

	bare := NewSchool(gjson.Parse(`{"sourcedId": "s2"}`))
	assert.Nil(t, bare.TenantID)
	assert.Nil(t, bare.Name)
}

func TestNewTenant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  string
		expected *string
	}{
		{
			name:     "first org-typed parent",
			payload:  `{"parent": [{"type":"school","sourcedId":"x"},{"type":"org","sourcedId":"y"},{"type":"org","sourcedId":"w"}]}`,
			expected: ptr("y"),
		},
		{
			name:    "no org-typed parent",
			payload: `{"parent": [{"type":"school","sourcedId":"x"}]}`,
		},
		{
			name:    "parent is an object",
			payload: `{"parent": {"type":"org","sourcedId":"x"}}`,
		},
		{
			name:    "no parent",
			payload: `{"sourcedId": "t1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tenant := NewTenant(gjson.Parse(tt.payload))
			assert.Equal(t, tt.expected, tenant.TenantID)
		})
	}
}

func TestNewStudent_Username(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		payload  string
		expected *string
	}{
		{
			name:     "sourcedId source uses uid",
			source:   "sourcedId",
			payload:  `{"sourcedId":"u1","username":"jdoe","email":"j@example.com"}`,
			expected: ptr("u1"),
		},
		{
			name:     "username source uses the provider username",
			source:   "username",
			payload:  `{"sourcedId":"u1","username":"jdoe","email":"j@example.com"}`,
			expected: ptr("jdoe"),
		},
		{
			name:     "literal source field",
			source:   "identifier",
			payload:  `{"sourcedId":"u1","identifier":"S-100","email":"j@example.com"}`,
			expected: ptr("S-100"),
		},
		{
			name:     "literal source field with a dot",
			source:   "metadata.login",
			payload:  `{"sourcedId":"u1","metadata.login":"dotted","email":"j@example.com"}`,
			expected: ptr("dotted"),
		},
		{
			name:     "blank source field falls back to email",
			source:   "username",
			payload:  `{"sourcedId":"u1","username":"","email":"j@example.com"}`,
			expected: ptr("j@example.com"),
		},
		{
			name:     "null source field falls back to email",
			source:   "identifier",
			payload:  `{"sourcedId":"u1","identifier":null,"email":"j@example.com"}`,
			expected: ptr("j@example.com"),
		},
		{
			name:     "no source falls back to email",
			payload:  `{"sourcedId":"u1","username":"jdoe","email":"j@example.com"}`,
			expected: ptr("j@example.com"),
		},
		{
			name:     "blank email falls back to uid",
			source:   "username",
			payload:  `{"sourcedId":"u1","email":""}`,
			expected: ptr("u1"),
		},
		{
			name:    "nothing available",
			source:  "username",
			payload: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			student := NewStudent(gjson.Parse(tt.payload), MapperOptions{UsernameSource: tt.source})
			assert.Equal(t, tt.expected, student.Username)

			teacher := NewTeacher(gjson.Parse(tt.payload), MapperOptions{UsernameSource: tt.source})
			assert.Equal(t, tt.expected, teacher.Username)
		})
	}
}

func TestNewStudent(t *testing.T) {
	t.Parallel()

	student := NewStudent(gjson.Parse(`{
		"sourcedId": "u1",
		"givenName": "Jane",
		"familyName": "Doe",
		"email": "jane@example.com",
		"grades": ["09", "10"],
		"orgs": [{"type":"school","sourcedId":"s9"},{"type":"org","sourcedId":"s1"}]
	}`), MapperOptions{UsernameSource: "sourcedId"})

	assert.Equal(t, "Jane", *student.FirstName)
	assert.Equal(t, "Doe", *student.LastName)
	assert.Equal(t, []string{"09", "10"}, student.Grades)
	assert.Equal(t, "s1", *student.SchoolID)
	assert.Equal(t, "oneroster", student.Provider)
}

func TestStudent_ToMap(t *testing.T) {
	t.Parallel()

	got := NewStudent(gjson.Parse(`{"sourcedId":"u1","givenName":"Jane"}`), MapperOptions{}).ToMap()

	assert.Equal(t, map[string]interface{}{
		"uid":        "u1",
		"first_name": "Jane",
		"last_name":  nil,
		"username":   "u1",
		"provider":   "oneroster",
		"email":      nil,
		"grades":     nil,
		"school_id":  nil,
	}, got)
}

func TestToMap_Keys(t *testing.T) {
	t.Parallel()

	empty := gjson.Parse(`{}`)

	tests := []struct {
		name string
		got  map[string]interface{}
		keys []string
	}{
		{"school", NewSchool(empty).ToMap(), []string{"uid", "name", "number", "tenant_id"}},
		{"tenant", NewTenant(empty).ToMap(), []string{"uid", "name", "number", "tenant_id"}},
		{"teacher", NewTeacher(empty, MapperOptions{}).ToMap(), []string{"uid", "first_name", "last_name", "username", "provider", "email", "school_id"}},
		{"class", NewClass(empty).ToMap(), []string{"uid", "title", "class_code", "school_id", "term_ids"}},
		{"enrollment", NewEnrollment(empty).ToMap(), []string{"uid", "role", "user_id", "class_id", "school_id", "primary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Len(t, tt.got, len(tt.keys))

			for _, key := range tt.keys {
				assert.Contains(t, tt.got, key)
			}
		})
	}
}

func TestNewClass(t *testing.T) {
	t.Parallel()

	class := NewClass(gjson.Parse(`{
		"sourcedId": "c1",
		"title": "Algebra I",
		"classCode": "ALG1",
		"school": {"sourcedId": "s1", "type": "org"},
		"terms": [{"sourcedId": "t1"}, {"sourcedId": "t2"}]
	}`))

	assert.Equal(t, "Algebra I", *class.Title)
	assert.Equal(t, "ALG1", *class.ClassCode)
	assert.Equal(t, "s1", *class.SchoolID)
	assert.Equal(t, []string{"t1", "t2"}, class.TermIDs)
}

func TestNewEnrollment(t *testing.T) {
	t.Parallel()

	enrollment := NewEnrollment(gjson.Parse(`{
		"sourcedId": "e1",
		"role": "student",
		"primary": "false",
		"user": {"sourcedId": "u1"},
		"class": {"sourcedId": "c1"},
		"school": {"sourcedId": "s1"}
	}`))

	assert.Equal(t, "student", *enrollment.Role)
	assert.Equal(t, "u1", *enrollment.UserID)
	assert.Equal(t, "c1", *enrollment.ClassID)
	assert.Equal(t, "s1", *enrollment.SchoolID)
	require.NotNil(t, enrollment.Primary)
	assert.False(t, *enrollment.Primary)
	assert.Equal(t, false, enrollment.ToMap()["primary"])

	assert.Nil(t, NewEnrollment(gjson.Parse(`{"primary":"maybe"}`)).Primary)
}

func ptr(value string) *string {
	return &value
}
