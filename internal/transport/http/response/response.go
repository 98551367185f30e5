package response

import "github.com/gin-gonic/gin"

// Error writes the flat error envelope the frontend matches on.
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

// ErrorWithDetails adds the details string used by the upload endpoint to
// carry extraction failure text.
func ErrorWithDetails(c *gin.Context, httpStatus int, message, details string) {
	c.JSON(httpStatus, gin.H{"error": message, "details": details})
}
