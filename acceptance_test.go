package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/controllers"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
	"github.com/tailorbook/tailorbook-api/testutil"
)

const acceptanceTailor = "auth0|acceptance-tailor"

// ShopAcceptanceTestSuite drives a tailor's working day against a real HTTP server
type ShopAcceptanceTestSuite struct {
	suite.Suite
	cfg    *config.Config
	db     *gorm.DB
	files  *services.MockFileService
	auth0  *httptest.Server
	server *httptest.Server
}

func (suite *ShopAcceptanceTestSuite) SetupSuite() {
	suite.cfg = testutil.LoadTestConfig(suite.T())

	suite.auth0 = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" || r.Header.Get("Authorization") != "Bearer acceptance-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(services.Auth0UserInfo{Sub: acceptanceTailor, Email: "noor@example.com", Name: "Noor"})
	}))
	suite.cfg.Auth0Domain = suite.auth0.URL
}

func (suite *ShopAcceptanceTestSuite) TearDownSuite() {
	suite.auth0.Close()
}

func (suite *ShopAcceptanceTestSuite) SetupTest() {
	suite.db = testutil.OpenTestDB(suite.T())
	suite.files = services.NewMockFileService()
	suite.files.SetAsMockForTesting()
	controllers.InitLedger(nil)

	auth := testutil.MockAuthMiddleware(acceptanceTailor, "acceptance-token", testutil.AllScopes)
	suite.server = httptest.NewServer(newRouter(suite.cfg, config.GetLogger(), auth))
}

func (suite *ShopAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
	services.SetFileService(nil)
}

// call sends a request and returns the status with the envelope's data
func (suite *ShopAcceptanceTestSuite) call(method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, suite.server.URL+"/api/v1"+path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return suite.send(req)
}

func (suite *ShopAcceptanceTestSuite) upload(path, field, filename string, content []byte) (int, map[string]interface{}) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, suite.server.URL+"/api/v1"+path, body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return suite.send(req)
}

func (suite *ShopAcceptanceTestSuite) send(req *http.Request) (int, map[string]interface{}) {
	status, data, apiErr := suite.sendRaw(req)
	if apiErr != nil {
		return status, apiErr
	}
	var object map[string]interface{}
	suite.Require().NoError(json.Unmarshal(data, &object), "data is not an object: %s", data)
	return status, object
}

// list fetches an endpoint whose data is an array
func (suite *ShopAcceptanceTestSuite) list(path string) (int, []map[string]interface{}) {
	req, err := http.NewRequest(http.MethodGet, suite.server.URL+"/api/v1"+path, nil)
	suite.Require().NoError(err)
	status, data, apiErr := suite.sendRaw(req)
	suite.Require().Nil(apiErr, "%v", apiErr)

	var items []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(data, &items), "data is not an array: %s", data)
	return status, items
}

func (suite *ShopAcceptanceTestSuite) sendRaw(req *http.Request) (int, json.RawMessage, map[string]interface{}) {
	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var envelope struct {
		Success bool                   `json:"success"`
		Data    json.RawMessage        `json:"data"`
		Error   map[string]interface{} `json:"error"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	if !envelope.Success {
		return resp.StatusCode, nil, envelope.Error
	}
	return resp.StatusCode, envelope.Data, nil
}

func (suite *ShopAcceptanceTestSuite) idOf(data map[string]interface{}) string {
	id, ok := data["id"].(float64)
	suite.Require().True(ok, "no id in %v", data)
	return strconv.FormatUint(uint64(id), 10)
}

func (suite *ShopAcceptanceTestSuite) summary(orderID string) map[string]interface{} {
	status, data := suite.call(http.MethodGet, "/orders/"+orderID+"/summary", nil)
	suite.Require().Equal(http.StatusOK, status, "%v", data)
	return data
}

func (suite *ShopAcceptanceTestSuite) TestOrderLifecycle() {
	status, tailor := suite.call(http.MethodPost, "/tailors", map[string]interface{}{"shop_id": 4})
	suite.Require().Equal(http.StatusCreated, status, "%v", tailor)
	suite.Equal("Noor", tailor["name"])

	status, customer := suite.call(http.MethodPost, "/customers", map[string]interface{}{"name": "Hina", "phone": "0321-5550000"})
	suite.Require().Equal(http.StatusCreated, status, "%v", customer)
	suite.Equal(float64(4), customer["shop_id"])

	status, uploaded := suite.upload("/uploads/images", "file", "design.jpg", []byte("jpg bytes"))
	suite.Require().Equal(http.StatusCreated, status, "%v", uploaded)
	imageKey := uploaded["storage_key"].(string)

	status, order := suite.call(http.MethodPost, "/orders", map[string]interface{}{
		"customer_id": customer["id"],
		"name":        "Eid outfits",
		"dress": map[string]interface{}{
			"type":     "stitching",
			"quantity": 1,
			"price":    2000,
			"measurement": map[string]interface{}{
				"values": map[string]string{"chest": "36", "length": "42"},
			},
			"images":   []map[string]interface{}{{"kind": "design", "storage_key": imageKey}},
			"clothes":  []map[string]interface{}{{"title": "Lawn", "length": 3, "unit": "m", "provided_by": "tailor", "price": 300, "image_index": 0}},
			"expenses": []map[string]interface{}{{"title": "Embroidery", "amount": 150}},
		},
	})
	suite.Require().Equal(http.StatusCreated, status, "%v", order)
	orderID := suite.idOf(order)
	suite.Equal("active", order["status"])

	summary := suite.summary(orderID)
	suite.Equal(float64(2000), summary["total_dress_amount"])
	suite.Equal(float64(450), summary["total_expenses"])
	suite.Equal(float64(2450), summary["amount_owed"])
	suite.Equal("unpaid", summary["payment_status"])

	status, data := suite.call(http.MethodPost, "/orders/"+orderID+"/payments", map[string]interface{}{"amount": 1000, "method": "cash"})
	suite.Require().Equal(http.StatusCreated, status, "%v", data)
	suite.Equal("partial", data["order"].(map[string]interface{})["payment_status"])

	// installments recorded at the same counter must all land
	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			resp, err := http.Post(suite.server.URL+"/api/v1/orders/"+orderID+"/payments", "application/json",
				bytes.NewReader([]byte(`{"amount":200}`)))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				body, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("payment rejected with %d: %s", resp.StatusCode, body)
			}
			return nil
		})
	}
	suite.Require().NoError(g.Wait())

	summary = suite.summary(orderID)
	suite.Equal(float64(2000), summary["total_payment"])
	suite.Equal(float64(450), summary["balance"])
	suite.Equal("partial", summary["payment_status"])

	status, data = suite.call(http.MethodPost, "/orders/"+orderID+"/discounts", map[string]interface{}{"title": "Eid offer", "amount": 450})
	suite.Require().Equal(http.StatusCreated, status, "%v", data)
	suite.Equal(float64(0), data["order"].(map[string]interface{})["balance"])
	suite.Equal("paid", data["order"].(map[string]interface{})["payment_status"])

	for _, next := range []string{"in_progress", "ready", "delivered"} {
		status, data = suite.call(http.MethodPatch, "/orders/"+orderID+"/status", map[string]interface{}{"status": next})
		suite.Require().Equal(http.StatusOK, status, "%s: %v", next, data)
		suite.Equal(next, data["status"])
	}

	status, data = suite.call(http.MethodPost, "/orders/"+orderID+"/dresses", map[string]interface{}{"type": "alteration", "quantity": 1, "price": 100})
	suite.Equal(http.StatusConflict, status, "%v", data)

	status, delivered := suite.list("/orders?payment_status=paid&status=delivered")
	suite.Require().Equal(http.StatusOK, status)
	suite.Require().Len(delivered, 1)
	suite.Equal(order["id"], delivered[0]["id"])

	status, unpaid := suite.list("/orders?payment_status=unpaid")
	suite.Require().Equal(http.StatusOK, status)
	suite.Empty(unpaid)

	var stored models.Order
	suite.Require().NoError(suite.db.First(&stored, orderID).Error)
	suite.Equal(models.OrderStatusDelivered, stored.Status)
	suite.Equal(models.PaymentStatusPaid, stored.PaymentStatus)
	suite.Equal(int64(2000), stored.TotalPayment)

	status, data = suite.call(http.MethodDelete, "/orders/"+orderID, nil)
	suite.Require().Equal(http.StatusOK, status, "%v", data)
	suite.Equal(true, data["deleted"])
	suite.Contains(suite.files.Released(), imageKey)

	status, data = suite.call(http.MethodGet, "/orders/"+orderID, nil)
	suite.Equal(http.StatusNotFound, status)
	suite.Equal("ORDER_NOT_FOUND", data["code"])
}

func (suite *ShopAcceptanceTestSuite) TestOtherTailorsOrdersAreHidden() {
	owner := models.Tailor{Auth0ID: "auth0|owner", Name: "Owner", Email: "owner@example.com"}
	suite.Require().NoError(suite.db.Create(&owner).Error)
	me := models.Tailor{Auth0ID: acceptanceTailor, Name: "Noor", Email: "noor@example.com"}
	suite.Require().NoError(suite.db.Create(&me).Error)
	customer := models.Customer{TailorID: owner.ID, Name: "Sana"}
	suite.Require().NoError(suite.db.Create(&customer).Error)
	order := models.Order{TailorID: owner.ID, CustomerID: customer.ID, Name: "Bridal"}
	suite.Require().NoError(suite.db.Create(&order).Error)
	orderID := strconv.FormatUint(uint64(order.ID), 10)

	status, data := suite.call(http.MethodGet, "/orders/"+orderID+"/summary", nil)
	suite.Equal(http.StatusNotFound, status)
	suite.Equal("ORDER_NOT_FOUND", data["code"])

	status, data = suite.call(http.MethodPost, "/orders/"+orderID+"/payments", map[string]interface{}{"amount": 100})
	suite.Equal(http.StatusNotFound, status)
	suite.Equal("ORDER_NOT_FOUND", data["code"])

	var payments int64
	suite.db.Model(&models.Payment{}).Count(&payments)
	suite.Zero(payments)
}

// TestHealthEndpointAvailability tests that the health endpoint answers repeatedly and quickly
func (suite *ShopAcceptanceTestSuite) TestHealthEndpointAvailability() {
	for i := 0; i < 5; i++ {
		start := time.Now()
		resp, err := http.Get(suite.server.URL + "/api/v1/health")
		suite.Require().NoError(err)
		resp.Body.Close()
		suite.Equal(http.StatusOK, resp.StatusCode, "Request %d should succeed", i+1)
		suite.Less(time.Since(start), time.Second)
	}
}

func TestShopAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(ShopAcceptanceTestSuite))
}
