package basehdl

import (
	"fmt"
	"runtime/debug"

	"barfer_analytics/internal/api/middleware"
	"barfer_analytics/internal/common"
	"barfer_analytics/internal/global"
	"barfer_analytics/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// SafeHandlerWrapper bọc handler với recover để bắt panic và xử lý lỗi an toàn.
// Server luôn trả về response cho client, kể cả khi có panic xảy ra.
func SafeHandlerWrapper(c fiber.Ctx, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithRequest(c).WithField("panic", r).Error("Handler panic")
			logger.GetAppLogger().Debug(string(debug.Stack()))

			HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
			err = nil
		}
	}()
	return fn()
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// err khác nil thì data bị bỏ qua.
func HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		middleware.HandleErrorResponse(c, err)
		return
	}

	// Trường hợp thành công
	_ = middleware.JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    data,
		"status":  "success",
	})
}

// ParseRequestQuery parse query string vào input rồi validate theo struct tag.
func ParseRequestQuery(c fiber.Ctx, input interface{}) error {
	if err := c.Bind().Query(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}

	global.InitValidator()
	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error())
	}
	return nil
}
