// Package authz is the single authorization gate of the API. Every route is tied
// to an Action; the gate decides from the caller's role, and for task actions the
// task's assignee, whether the action may proceed.
package authz

import (
	"fmt"

	"github.com/Ayush3323/crm-backend/internal/apierror"
)

// Role is a user's role as stored and as carried in tokens.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleSubAdmin Role = "Sub Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleSubAdmin, RoleManager, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// FullAccess reports whether r is Admin or Sub Admin. The two are equivalent for
// every action in this system.
func (r Role) FullAccess() bool { return r == RoleAdmin || r == RoleSubAdmin }

// Caller is the authenticated identity making a request.
type Caller struct {
	ID   uint
	Name string
	Role Role
}

// Resource carries the ownership data of the record an action targets.
type Resource struct {
	// AssignedTo is the Manager responsible for a task.
	AssignedTo uint
}

// Action names an operation guarded by the gate.
type Action int

const (
	ListUsers Action = iota + 1
	ReadUser
	ListEmployees
	ViewUserStats
	CreateUser
	UpdateUser
	DeleteUser
	ResetUserPassword

	ListMachines
	ReadMachine
	CreateMachine
	UpdateMachine
	DeleteMachine
	UpdateMachineStatus
	AddMaintenanceRecord

	ListTasks
	ListUserTasks
	ListEmployeeTasks
	ReadTask
	CreateTask
	UpdateTask
	UpdateTaskProgress
	CommentTask
	DeleteTask

	ViewAnalytics
	ReadProfile
)

var actionNames = map[Action]string{
	ListUsers:            "list users",
	ReadUser:             "read user",
	ListEmployees:        "list employees",
	ViewUserStats:        "view user stats",
	CreateUser:           "create user",
	UpdateUser:           "update user",
	DeleteUser:           "delete user",
	ResetUserPassword:    "reset user password",
	ListMachines:         "list machines",
	ReadMachine:          "read machine",
	CreateMachine:        "create machine",
	UpdateMachine:        "update machine",
	DeleteMachine:        "delete machine",
	UpdateMachineStatus:  "update machine status",
	AddMaintenanceRecord: "add maintenance record",
	ListTasks:            "list tasks",
	ListUserTasks:        "list user tasks",
	ListEmployeeTasks:    "list employee tasks",
	ReadTask:             "read task",
	CreateTask:           "create task",
	UpdateTask:           "update task",
	UpdateTaskProgress:   "update task progress",
	CommentTask:          "comment task",
	DeleteTask:           "delete task",
	ViewAnalytics:        "view analytics",
	ReadProfile:          "read profile",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// rule is the policy for one action. A nil roles set admits any authenticated
// caller. ownerMessage, when set, enables the Employee ownership check and is the
// message of its denial.
type rule struct {
	roles        []Role
	ownerMessage string
}

var (
	fullAccess        = []Role{RoleAdmin, RoleSubAdmin}
	fullAccessManager = []Role{RoleAdmin, RoleSubAdmin, RoleManager}
)

var policy = map[Action]rule{
	ListUsers:         {roles: fullAccess},
	ReadUser:          {roles: fullAccess},
	ListEmployees:     {roles: fullAccessManager},
	ViewUserStats:     {roles: fullAccess},
	CreateUser:        {roles: fullAccess},
	UpdateUser:        {roles: fullAccess},
	DeleteUser:        {roles: fullAccess},
	ResetUserPassword: {roles: fullAccess},

	ListMachines:         {},
	ReadMachine:          {},
	CreateMachine:        {roles: fullAccess},
	UpdateMachine:        {roles: fullAccess},
	DeleteMachine:        {roles: fullAccess},
	UpdateMachineStatus:  {roles: fullAccessManager},
	AddMaintenanceRecord: {roles: fullAccessManager},

	ListTasks:          {},
	ListUserTasks:      {},
	ListEmployeeTasks:  {roles: fullAccessManager},
	ReadTask:           {ownerMessage: "Not authorized to access this task"},
	CreateTask:         {roles: fullAccessManager},
	UpdateTask:         {ownerMessage: "Not authorized to update this task"},
	UpdateTaskProgress: {ownerMessage: "Not authorized to update this task"},
	CommentTask:        {ownerMessage: "Not authorized to comment on this task"},
	DeleteTask:         {roles: fullAccess},

	ViewAnalytics: {},
	ReadProfile:   {},
}

// Allow checks the role part of action's policy. Ownership is not evaluated;
// use AllowOn once the target record is loaded.
func Allow(caller *Caller, action Action) error {
	_, err := check(caller, action)
	return err
}

// AllowOn checks action's full policy against the target resource.
func AllowOn(caller *Caller, action Action, res Resource) error {
	r, err := check(caller, action)
	if err != nil {
		return err
	}
	if r.ownerMessage != "" && caller.Role == RoleEmployee && res.AssignedTo != caller.ID {
		return apierror.Forbidden(r.ownerMessage)
	}
	return nil
}

func check(caller *Caller, action Action) (rule, error) {
	if caller == nil || caller.ID == 0 {
		return rule{}, apierror.Unauthenticated("Not authorized to access this route")
	}
	r, ok := policy[action]
	if !ok || !caller.Role.Valid() {
		return rule{}, forbiddenRole(caller.Role)
	}
	if r.roles == nil {
		return r, nil
	}
	for _, allowed := range r.roles {
		if caller.Role == allowed {
			return r, nil
		}
	}
	return rule{}, forbiddenRole(caller.Role)
}

func forbiddenRole(r Role) error {
	return apierror.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", r))
}

// employeeTaskFields is the subset of task fields an Employee may change.
var employeeTaskFields = map[string]bool{
	"deadline": true,
	"priority": true,
	"machine":  true,
	"progress": true,
	"status":   true,
}

// TaskFieldWritable reports whether caller may change the task field with the
// given JSON name. Fields an Employee may not write are dropped from their
// updates rather than rejected.
func TaskFieldWritable(caller Caller, field string) bool {
	if caller.Role != RoleEmployee {
		return true
	}
	return employeeTaskFields[field]
}
