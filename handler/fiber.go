package handler

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"
)

// Fiber serves the same routes as Handle for local development. The last
// path segment selects the operation.
func (h *Handler) Fiber(c *fiber.Ctx) error {
	headers := make(map[string]string)
	for k, v := range c.GetReqHeaders() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	resp, err := h.Handle(c.UserContext(), events.APIGatewayProxyRequest{
		HTTPMethod: c.Method(),
		Path:       c.Path(),
		Headers:    headers,
		Body:       string(c.Body()),
	})
	if err != nil {
		return err
	}

	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	return c.Status(resp.StatusCode).SendString(resp.Body)
}
