package api

import (
	"school-portal-gateway/internal/model"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.RequireSession(), handler.Logout)
		auth.GET("/me", handler.RequireSession(), handler.Me)
	}

	admin := v1.Group("", handler.RequireSession(model.RoleAdmin))
	{
		admin.GET("/admin/dashboard", handler.AdminDashboard)

		admin.GET("/students", handler.ListStudents)
		admin.POST("/students", handler.CreateStudent)
		admin.PUT("/students/:documentId", handler.UpdateStudent)
		admin.DELETE("/students/:documentId", handler.DeleteStudent)

		admin.GET("/teachers", handler.ListTeachers)
		admin.POST("/teachers", handler.CreateTeacher)
		admin.PUT("/teachers/:documentId", handler.UpdateTeacher)
		admin.DELETE("/teachers/:documentId", handler.DeleteTeacher)

		admin.GET("/classes", handler.ListClasses)
		admin.GET("/users", handler.ListUsers)
		admin.POST("/users", handler.CreateUser)
		admin.GET("/roles", handler.ListRoles)
	}

	staff := v1.Group("", handler.RequireSession(model.RoleAdmin, model.RoleTeacher))
	{
		staff.GET("/attendance/roster", handler.AttendanceRoster)
		staff.POST("/attendance", handler.SubmitAttendance)
		staff.GET("/attendance/batches/:id", handler.GetBatch)

		staff.GET("/reports/attendance", handler.AttendanceReport)
		staff.GET("/reports/attendance.csv", handler.AttendanceCSV)
		staff.GET("/reports/attendance.xlsx", handler.AttendanceXLSX)
		staff.POST("/reports/attendance/exports", handler.CreateExport)
		staff.GET("/reports/exports/:id", handler.GetExport)
		staff.GET("/reports/exports/:id/download", handler.DownloadExport)

		staff.POST("/exam-results", handler.CreateExamResult)
		staff.POST("/exam-results/import", handler.ImportExamResults)
	}

	teacher := v1.Group("/teacher", handler.RequireSession(model.RoleTeacher))
	{
		teacher.GET("/overview", handler.TeacherOverview)
		teacher.POST("/attendance", handler.SubmitClassAttendance)
	}

	student := v1.Group("/student", handler.RequireSession(model.RoleStudent))
	{
		student.GET("/overview", handler.StudentOverview)
		student.GET("/attendance", handler.StudentAttendance)
		student.GET("/results", handler.StudentResults)
	}
}
