package rbac

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	RoleStudent: {
		TestView,
		AttemptStart,
		AttemptSubmit,
		AttemptViewOwn,
		EligibilityView,
	},
	RoleTeacher: {
		"test:*",
		AttemptStart,
		AttemptSubmit,
		AttemptViewOwn,
		AttemptViewAll,
		EligibilityView,
	},
	RoleAdmin: {"*"},
}
