package dto

import "time"

type DashboardOverview struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalTasks        int64 `json:"totalTasks"`
	TotalMachines     int64 `json:"totalMachines"`
	MachineEfficiency int64 `json:"machineEfficiency"`
}

// RecentTask is a dashboard row; users carry id and name only.
type RecentTask struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	Progress      int          `json:"progress"`
	CreatedAt     time.Time    `json:"createdAt"`
	AssignedUser  *UserSummary `json:"assignedUser"`
	CreatedByUser *UserSummary `json:"createdByUser"`
}

type DashboardAnalytics struct {
	Overview                  DashboardOverview `json:"overview"`
	TaskStatusDistribution    map[string]int64  `json:"taskStatusDistribution"`
	TaskPriorityDistribution  map[string]int64  `json:"taskPriorityDistribution"`
	MachineStatusDistribution map[string]int64  `json:"machineStatusDistribution"`
	UserRoleDistribution      map[string]int64  `json:"userRoleDistribution"`
	RecentTasks               []RecentTask      `json:"recentTasks"`
}

type TaskAnalytics struct {
	CompletionRate  int64            `json:"completionRate"`
	AverageProgress int64            `json:"averageProgress"`
	TasksByCategory map[string]int64 `json:"tasksByCategory"`
	TasksByUser     map[string]int64 `json:"tasksByUser"`
	TotalTasks      int64            `json:"totalTasks"`
	CompletedTasks  int64            `json:"completedTasks"`
}

type MachineAnalytics struct {
	AverageEfficiency     int64            `json:"averageEfficiency"`
	MachinesByDepartment  map[string]int64 `json:"machinesByDepartment"`
	MaintenanceFrequency  map[string]int64 `json:"maintenanceFrequency"`
	OperationalPercentage int64            `json:"operationalPercentage"`
	TotalMachines         int64            `json:"totalMachines"`
	OperationalMachines   int64            `json:"operationalMachines"`
}

type UserAnalytics struct {
	UserStatusDistribution map[string]int64 `json:"userStatusDistribution"`
	UsersByDepartment      map[string]int64 `json:"usersByDepartment"`
	TasksPerUser           map[string]int64 `json:"tasksPerUser"`
	RecentUsers            []UserResponse   `json:"recentUsers"`
	TotalUsers             int64            `json:"totalUsers"`
	ActiveUsers            int64            `json:"activeUsers"`
}
