package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Campus Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the campus treasure hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/signup
	postSignup, _ := r.NewOperationContext(http.MethodPost, "/api/signup")
	postSignup.SetSummary("Register participant")
	postSignup.SetDescription("Creates a participant account. Returns a session token.")
	postSignup.AddReqStructure(SignupRequest{})
	postSignup.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSignup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSignup.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSignup)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Participant login")
	postLogin.SetDescription("Authenticate with username and password. Returns a session token.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current participant")
	getMe.SetDescription("Returns the participant, their check-ins, and spin state. Requires Bearer token.")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/locations
	getLocations, _ := r.NewOperationContext(http.MethodGet, "/api/locations")
	getLocations.SetSummary("List locations")
	getLocations.SetDescription("Returns all hunt locations.")
	getLocations.AddRespStructure([]Location{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLocations)

	// GET /api/locations/{id}/subevents
	getSubEvents, _ := r.NewOperationContext(http.MethodGet, "/api/locations/{id}/subevents")
	getSubEvents.SetSummary("List sub-events")
	getSubEvents.SetDescription("Returns the sub-events scheduled at a location.")
	getSubEvents.AddRespStructure([]SubEvent{}, openapi.WithHTTPStatus(http.StatusOK))
	getSubEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSubEvents)

	// GET /api/herocards
	getHeroCards, _ := r.NewOperationContext(http.MethodGet, "/api/herocards")
	getHeroCards.SetSummary("List hero cards")
	getHeroCards.SetDescription("Returns the landing page hero cards in display order.")
	getHeroCards.AddRespStructure([]HeroCard{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHeroCards)

	// POST /api/checkin
	postCheckin, _ := r.NewOperationContext(http.MethodPost, "/api/checkin")
	postCheckin.SetSummary("Check in at a location")
	postCheckin.SetDescription("Verifies a scanned QR payload and awards the location's points once. Requires Bearer token.")
	postCheckin.AddReqStructure(CheckinRequest{})
	postCheckin.AddRespStructure(CheckinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postCheckin)

	// POST /api/subevents/checkin
	postSubEventCheckin, _ := r.NewOperationContext(http.MethodPost, "/api/subevents/checkin")
	postSubEventCheckin.SetSummary("Check in at a sub-event")
	postSubEventCheckin.SetDescription("Records sub-event attendance. The first sub-event at a new location carries a bonus. Requires Bearer token.")
	postSubEventCheckin.AddReqStructure(SubEventCheckinRequest{})
	postSubEventCheckin.AddRespStructure(SubEventCheckinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSubEventCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSubEventCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postSubEventCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSubEventCheckin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSubEventCheckin)

	// POST /api/spin
	postSpin, _ := r.NewOperationContext(http.MethodPost, "/api/spin")
	postSpin.SetSummary("Spin for a prize")
	postSpin.SetDescription("Draws a weighted prize once per participant above the points threshold. Requires Bearer token.")
	postSpin.AddRespStructure(SpinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSpin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postSpin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSpin)

	// GET /api/spin
	getSpin, _ := r.NewOperationContext(http.MethodGet, "/api/spin")
	getSpin.SetSummary("Get spin result")
	getSpin.SetDescription("Returns the participant's existing spin, if any. Requires Bearer token.")
	getSpin.AddRespStructure(SpinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSpin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getSpin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSpin)

	// POST /api/admin/login
	postAdminLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postAdminLogin.SetSummary("Admin login")
	postAdminLogin.SetDescription("Authenticate with username and password. Sets admin_session cookie.")
	postAdminLogin.AddReqStructure(AdminLoginRequest{})
	postAdminLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAdminLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postAdminLogin)

	// POST /api/admin/logout
	postAdminLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postAdminLogout.SetSummary("Admin logout")
	postAdminLogout.SetDescription("Clears admin session and cookie.")
	postAdminLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postAdminLogout)

	// GET /api/admin/me
	getAdminMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getAdminMe.SetSummary("Current admin")
	getAdminMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getAdminMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getAdminMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getAdminMe)

	// GET /api/admin/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/admin/events")
	getEvents.SetSummary("Activity event stream")
	getEvents.SetDescription("Server-Sent Events stream of check-in, spin and claim activity. Requires admin_session cookie.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/admin/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/admin/stats")
	getStats.SetSummary("Event statistics")
	getStats.SetDescription("Returns participant, check-in, spin, and unclaimed-prize counts. Requires admin_session cookie.")
	getStats.AddRespStructure(StatsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getStats.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getStats)

	// GET /api/admin/locations
	listLocations, _ := r.NewOperationContext(http.MethodGet, "/api/admin/locations")
	listLocations.SetSummary("List locations")
	listLocations.SetDescription("Returns all locations including QR versions. Requires admin_session cookie.")
	listLocations.AddRespStructure([]Location{}, openapi.WithHTTPStatus(http.StatusOK))
	listLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listLocations)

	// POST /api/admin/locations
	createLocation, _ := r.NewOperationContext(http.MethodPost, "/api/admin/locations")
	createLocation.SetSummary("Create location")
	createLocation.SetDescription("Creates a hunt location. Requires admin_session cookie.")
	createLocation.AddReqStructure(LocationRequest{})
	createLocation.AddRespStructure(Location{}, openapi.WithHTTPStatus(http.StatusCreated))
	createLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createLocation)

	// PUT /api/admin/locations/{id}
	updateLocation, _ := r.NewOperationContext(http.MethodPut, "/api/admin/locations/{id}")
	updateLocation.SetSummary("Update location")
	updateLocation.SetDescription("Updates a location. The QR version is unchanged. Requires admin_session cookie.")
	updateLocation.AddReqStructure(LocationRequest{})
	updateLocation.AddRespStructure(Location{}, openapi.WithHTTPStatus(http.StatusOK))
	updateLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateLocation)

	// DELETE /api/admin/locations/{id}
	deleteLocation, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/locations/{id}")
	deleteLocation.SetSummary("Delete location")
	deleteLocation.SetDescription("Deletes a location. Blocked while sub-events or check-ins reference it. Requires admin_session cookie.")
	deleteLocation.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deleteLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteLocation)

	// GET /api/admin/locations/{id}/qr
	locationQROp, _ := r.NewOperationContext(http.MethodGet, "/api/admin/locations/{id}/qr")
	locationQROp.SetSummary("Location QR payload")
	locationQROp.SetDescription("Returns the signed QR payload for today at the current version. Requires admin_session cookie.")
	locationQROp.AddRespStructure(QRCodeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	locationQROp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	locationQROp.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(locationQROp)

	// POST /api/admin/locations/{id}/qr/rotate
	rotateLocationQR, _ := r.NewOperationContext(http.MethodPost, "/api/admin/locations/{id}/qr/rotate")
	rotateLocationQR.SetSummary("Rotate location QR")
	rotateLocationQR.SetDescription("Bumps the QR version, invalidating printed codes. Requires admin_session cookie.")
	rotateLocationQR.AddRespStructure(QRCodeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	rotateLocationQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	rotateLocationQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(rotateLocationQR)

	// POST /api/admin/locations/{id}/subevents
	createSubEvent, _ := r.NewOperationContext(http.MethodPost, "/api/admin/locations/{id}/subevents")
	createSubEvent.SetSummary("Create sub-event")
	createSubEvent.SetDescription("Creates a sub-event at a location. Requires admin_session cookie.")
	createSubEvent.AddReqStructure(SubEventRequest{})
	createSubEvent.AddRespStructure(SubEvent{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	createSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createSubEvent)

	// PUT /api/admin/subevents/{id}
	updateSubEvent, _ := r.NewOperationContext(http.MethodPut, "/api/admin/subevents/{id}")
	updateSubEvent.SetSummary("Update sub-event")
	updateSubEvent.SetDescription("Updates a sub-event. Requires admin_session cookie.")
	updateSubEvent.AddReqStructure(SubEventRequest{})
	updateSubEvent.AddRespStructure(SubEvent{}, openapi.WithHTTPStatus(http.StatusOK))
	updateSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updateSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateSubEvent)

	// DELETE /api/admin/subevents/{id}
	deleteSubEvent, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/subevents/{id}")
	deleteSubEvent.SetSummary("Delete sub-event")
	deleteSubEvent.SetDescription("Deletes a sub-event. Blocked while completions reference it. Requires admin_session cookie.")
	deleteSubEvent.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deleteSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteSubEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteSubEvent)

	// GET /api/admin/prizes
	listPrizes, _ := r.NewOperationContext(http.MethodGet, "/api/admin/prizes")
	listPrizes.SetSummary("List prizes")
	listPrizes.SetDescription("Returns all prizes with weight and stock. Requires admin_session cookie.")
	listPrizes.AddRespStructure([]Prize{}, openapi.WithHTTPStatus(http.StatusOK))
	listPrizes.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listPrizes)

	// POST /api/admin/prizes
	createPrize, _ := r.NewOperationContext(http.MethodPost, "/api/admin/prizes")
	createPrize.SetSummary("Create prize")
	createPrize.SetDescription("Creates a prize. Requires admin_session cookie.")
	createPrize.AddReqStructure(PrizeRequest{})
	createPrize.AddRespStructure(Prize{}, openapi.WithHTTPStatus(http.StatusCreated))
	createPrize.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createPrize.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createPrize)

	// GET /api/admin/settings
	getSettings, _ := r.NewOperationContext(http.MethodGet, "/api/admin/settings")
	getSettings.SetSummary("Get settings")
	getSettings.SetDescription("Returns the points threshold for spinning. Requires admin_session cookie.")
	getSettings.AddRespStructure(SettingsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSettings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getSettings)

	// GET /api/admin/participants
	listParticipants, _ := r.NewOperationContext(http.MethodGet, "/api/admin/participants")
	listParticipants.SetSummary("List participants")
	listParticipants.SetDescription("Returns all registered participants. Requires admin_session cookie.")
	listParticipants.AddRespStructure([]Participant{}, openapi.WithHTTPStatus(http.StatusOK))
	listParticipants.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listParticipants)

	// PATCH /api/admin/participants/{id}/points
	adjustPoints, _ := r.NewOperationContext(http.MethodPatch, "/api/admin/participants/{id}/points")
	adjustPoints.SetSummary("Adjust points")
	adjustPoints.SetDescription("Applies a manual points delta. The total never goes below zero. Requires admin_session cookie.")
	adjustPoints.AddReqStructure(AdjustPointsRequest{})
	adjustPoints.AddRespStructure(AdjustPointsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	adjustPoints.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	adjustPoints.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(adjustPoints)

	// GET /api/admin/claims/{code}
	lookupClaim, _ := r.NewOperationContext(http.MethodGet, "/api/admin/claims/{code}")
	lookupClaim.SetSummary("Look up claim code")
	lookupClaim.SetDescription("Resolves a four-digit claim code to its participant and prize. Requires admin_session cookie.")
	lookupClaim.AddRespStructure(ClaimLookupResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	lookupClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	lookupClaim.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(lookupClaim)

	// POST /api/admin/claims/{id}/mark
	markClaimed, _ := r.NewOperationContext(http.MethodPost, "/api/admin/claims/{id}/mark")
	markClaimed.SetSummary("Mark prize claimed")
	markClaimed.SetDescription("Records prize handover for a participant. Idempotent. Requires admin_session cookie.")
	markClaimed.AddRespStructure(MarkClaimedResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	markClaimed.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	markClaimed.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(markClaimed)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
