package handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront/internal/apierror"
	"storefront/internal/logging"
	"storefront/internal/mykafka"
)

func parseID(c echo.Context) (uint, error) {
	idParam := c.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil || id < 1 {
		return 0, apierror.NotFound(fmt.Sprintf("No item found with id : %s", idParam))
	}
	return uint(id), nil
}

func publish(c echo.Context, producer *mykafka.Producer, topic string, key uint, event map[string]any) {
	ctx := c.Request().Context()
	if err := producer.PublishEvent(ctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish", "topic", topic, "error", err)
	}
}
