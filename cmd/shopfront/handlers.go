package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/savannahsoft/shopfront/internal/admin"
	"github.com/savannahsoft/shopfront/internal/auth"
	ord "github.com/savannahsoft/shopfront/internal/order"
	"github.com/savannahsoft/shopfront/internal/payment"
)

// newTrackingCode generates the customer-facing code. Always uppercase so the
// case-insensitive lookup has a canonical stored form.
func newTrackingCode() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func createOrderHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one item is required"})
			return
		}

		total := decimal.Zero
		items := make([]ord.Item, 0, len(req.Items))
		o := &ord.Order{
			ID:            uuid.NewString(),
			TrackingCode:  newTrackingCode(),
			Status:        ord.StatusPending,
			PaymentStatus: ord.PaymentPending,
			CustomerEmail: req.CustomerEmail,
		}
		for _, it := range req.Items {
			if it.ProductName == "" || it.Quantity <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
				return
			}
			price, err := decimal.NewFromString(it.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, ord.Item{
				ID:          uuid.NewString(),
				OrderID:     o.ID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       price.StringFixed(2),
			})
		}
		o.Total = total.StringFixed(2)

		if err := repo.Create(c.Request.Context(), o, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create order"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": o, "items": items})
	}
}

func trackOrderHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		o, items, err := repo.GetByTrackingCode(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Order not found. Check the tracking code and try again.",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": o, "items": items})
	}
}

func paymentStatusHandler(rc *ord.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingID := c.Query("orderTrackingId")
		if trackingID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "missing parameter",
				"details": "orderTrackingId is required",
			})
			return
		}

		res, err := rc.Reconcile(c.Request.Context(), trackingID)
		if err != nil {
			var gerr *payment.GatewayError
			switch {
			case errors.Is(err, payment.ErrUnreachable):
				c.JSON(http.StatusBadGateway, gin.H{
					"error":   "payment gateway unreachable",
					"details": "try again shortly",
				})
			case errors.As(err, &gerr):
				c.JSON(http.StatusBadGateway, gin.H{
					"error":   "payment gateway error",
					"details": gerr.Message,
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "status check failed",
					"details": "internal error",
				})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"orderTrackingId": res.TrackingID,
			"paymentStatus":   res.GatewayStatus,
			"amount":          res.Amount,
			"currency":        res.Currency,
			"orderStatus":     res.OrderStatus,
		})
	}
}

func adminLoginHandler(admins admin.Repository, codec *auth.Codec, ttlSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req admin.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		a, err := admins.GetByUsername(c.Request.Context(), req.Username)
		if err != nil || !admin.CheckPassword(a.PasswordHash, req.Password) {
			// Same answer for unknown user and wrong password.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		tok, err := codec.Issue(a.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
			return
		}
		c.SetCookie(auth.CookieName, tok, ttlSeconds, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func adminLogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func listOrdersHandler(repo ord.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		orders, err := repo.List(c.Request.Context(), ord.Query{
			Status: c.Query("status"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list orders"})
			return
		}
		if orders == nil {
			orders = []ord.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders, "limit": limit, "offset": offset})
	}
}

func bulkDeleteOrdersHandler(deleter *ord.BulkDeleter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.BulkDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}

		deleted, err := deleter.DeleteOrders(c.Request.Context(), req.OrderIDs)
		if err != nil {
			var perr *ord.PartialDeleteError
			switch {
			case errors.Is(err, ord.ErrEmptyInput):
				c.JSON(http.StatusBadRequest, gin.H{"error": "no order ids supplied"})
			case errors.As(err, &perr):
				// Items removed, order rows intact. Retrying with the
				// same ids is safe.
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "delete failed",
					"details": "item rows removed but order rows remain; retry is safe",
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "delete failed",
					"details": "no orders were removed",
				})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
	}
}
