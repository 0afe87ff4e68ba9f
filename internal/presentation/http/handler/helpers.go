package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/presentation/http/dto/response"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
	"github.com/ibrhamsworld/erp-api/pkg/utils"
)

// dateLayout is the format of date-only query parameters
const dateLayout = "2006-01-02"

// pathID parses the UUID path parameter name, writing a 400 when it is malformed
func pathID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// optionalUUID parses a value that binding already checked to be a UUID or empty
func optionalUUID(s string) *uuid.UUID {
	id, err := utils.ParseOptionalUUID(s)
	if err != nil {
		return nil
	}
	return id
}

// parseDay parses a YYYY-MM-DD parameter as the start of that day in loc
func parseDay(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
