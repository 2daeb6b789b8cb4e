package model

// Role distinguishes office administrators from field crews.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleCrew  Role = "crew"
)

// Session identifies the authenticated actor. Username doubles as the
// company identifier; the handles address the company's remote data store
// and file storage.
type Session struct {
	Username      string `json:"username"`
	Role          Role   `json:"role"`
	CompanyName   string `json:"companyName"`
	StoreHandle   string `json:"spreadsheetId"`
	StorageHandle string `json:"folderId"`
}

// IsCrew reports whether the session belongs to a field crew device.
func (s Session) IsCrew() bool {
	return s.Role == RoleCrew
}

// EstimateStatus is the lifecycle position of an estimate.
type EstimateStatus string

const (
	StatusDraft     EstimateStatus = "Draft"
	StatusWorkOrder EstimateStatus = "Work Order"
	StatusInvoiced  EstimateStatus = "Invoiced"
	StatusPaid      EstimateStatus = "Paid"
	StatusArchived  EstimateStatus = "Archived"
)

// Rank orders the linear lifecycle. Archived sits outside it and ranks -1.
func (s EstimateStatus) Rank() int {
	switch s {
	case StatusDraft, "":
		return 0
	case StatusWorkOrder:
		return 1
	case StatusInvoiced:
		return 2
	case StatusPaid:
		return 3
	default:
		return -1
	}
}

// ExecutionStatus is field-reported progress on a work order.
type ExecutionStatus string

const (
	ExecutionNotStarted ExecutionStatus = "Not Started"
	ExecutionInProgress ExecutionStatus = "In Progress"
	ExecutionCompleted  ExecutionStatus = "Completed"
)

type CalculationMode string

const (
	ModeBuilding  CalculationMode = "Building"
	ModeWallsOnly CalculationMode = "Walls Only"
	ModeFlatArea  CalculationMode = "Flat Area"
	ModeCustom    CalculationMode = "Custom"
)

type FoamType string

const (
	FoamOpenCell   FoamType = "Open Cell"
	FoamClosedCell FoamType = "Closed Cell"
)

type AreaType string

const (
	AreaWall AreaType = "Wall"
	AreaRoof AreaType = "Roof"
)

type PricingMode string

const (
	PricingLevel PricingMode = "level_pricing"
	PricingSqFt  PricingMode = "sqft_pricing"
)

// ImageKind tags uploaded job photos.
type ImageKind string

const (
	ImageSiteCondition ImageKind = "site_condition"
	ImageCompletion    ImageKind = "completion"
)

// LineType says which stock a purchase order line replenishes.
type LineType string

const (
	LineOpenCell   LineType = "open_cell"
	LineClosedCell LineType = "closed_cell"
	LineInventory  LineType = "inventory"
)

// EquipmentInUse is the status set on tools claimed by a work order.
const EquipmentInUse = "In Use"

type WarehouseItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unitCost,omitempty"`
}

// Warehouse holds bulk chemical sets and discrete items. Quantities may be
// negative.
type Warehouse struct {
	OpenCellSets   float64         `json:"openCellSets"`
	ClosedCellSets float64         `json:"closedCellSets"`
	Items          []WarehouseItem `json:"items"`
}

// LastSeen points at the job that most recently claimed a tool.
type LastSeen struct {
	JobID        string `json:"jobId"`
	CustomerName string `json:"customerName"`
	Date         string `json:"date"`
	CrewMember   string `json:"crewMember"`
}

type EquipmentItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	LastSeen *LastSeen `json:"lastSeen,omitempty"`
}

type AdditionalArea struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Length      float64  `json:"length"`
	Width       float64  `json:"width"`
	Type        AreaType `json:"type"`
}

type CommunicationLogEntry struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type CustomerProfile struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name"`
	Address string                  `json:"address"`
	City    string                  `json:"city"`
	State   string                  `json:"state"`
	Zip     string                  `json:"zip"`
	Email   string                  `json:"email"`
	Phone   string                  `json:"phone"`
	Notes   string                  `json:"notes"`
	Logs    []CommunicationLogEntry `json:"logs,omitempty"`
	Status  string                  `json:"status"`
}

type JobImage struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	UploadedAt string    `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
	Type       ImageKind `json:"type"`
}

type MaterialUsageLogEntry struct {
	Date         string  `json:"date"`
	CustomerName string  `json:"customerName"`
	MaterialName string  `json:"materialName"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	LoggedBy     string  `json:"loggedBy"`
}

type PurchaseOrderLine struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitCost    float64  `json:"unitCost"`
	Total       float64  `json:"total"`
	Type        LineType `json:"type"`
	InventoryID string   `json:"inventoryId,omitempty"`
}

type PurchaseOrder struct {
	ID         string              `json:"id"`
	Date       string              `json:"date"`
	VendorName string              `json:"vendorName"`
	Status     string              `json:"status"`
	Items      []PurchaseOrderLine `json:"items"`
	TotalCost  float64             `json:"totalCost"`
	Notes      string              `json:"notes"`
}

// CalculationResults is the calculator's output, stored verbatim on records.
type CalculationResults struct {
	Perimeter           float64 `json:"perimeter"`
	SlopeFactor         float64 `json:"slopeFactor"`
	BaseWallArea        float64 `json:"baseWallArea"`
	GableArea           float64 `json:"gableArea"`
	TotalWallArea       float64 `json:"totalWallArea"`
	BaseRoofArea        float64 `json:"baseRoofArea"`
	TotalRoofArea       float64 `json:"totalRoofArea"`
	WallBdFt            float64 `json:"wallBdFt"`
	RoofBdFt            float64 `json:"roofBdFt"`
	TotalOpenCellBdFt   float64 `json:"totalOpenCellBdFt"`
	TotalClosedCellBdFt float64 `json:"totalClosedCellBdFt"`
	OpenCellSets        float64 `json:"openCellSets"`
	ClosedCellSets      float64 `json:"closedCellSets"`
	OpenCellCost        float64 `json:"openCellCost"`
	ClosedCellCost      float64 `json:"closedCellCost"`
	InventoryCost       float64 `json:"inventoryCost"`
	LaborCost           float64 `json:"laborCost"`
	MiscExpenses        float64 `json:"miscExpenses"`
	MaterialCost        float64 `json:"materialCost"`
	TotalCost           float64 `json:"totalCost"`
}

type FoamSettings struct {
	Type            FoamType `json:"type"`
	Thickness       float64  `json:"thickness"`
	WastePercentage float64  `json:"wastePercentage"`
}

type OtherExpense struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Expenses carries job-level labor and surcharges. A nil LaborRate means the
// company-wide rate applies.
type Expenses struct {
	ManHours      float64      `json:"manHours"`
	TripCharge    float64      `json:"tripCharge"`
	FuelSurcharge float64      `json:"fuelSurcharge"`
	Other         OtherExpense `json:"other"`
	LaborRate     *float64     `json:"laborRate,omitempty"`
}

type SqFtRates struct {
	Wall float64 `json:"wall"`
	Roof float64 `json:"roof"`
}

type Yields struct {
	OpenCell   float64 `json:"openCell"`
	ClosedCell float64 `json:"closedCell"`
}

type Costs struct {
	OpenCell   float64 `json:"openCell"`
	ClosedCell float64 `json:"closedCell"`
	LaborRate  float64 `json:"laborRate"`
}

type CompanyProfile struct {
	CompanyName   string `json:"companyName"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	LogoURL       string `json:"logoUrl"`
	CrewAccessPin string `json:"crewAccessPin"`
}

// JobInputs is the geometry snapshot stored on a record.
type JobInputs struct {
	Mode            CalculationMode  `json:"mode"`
	Length          float64          `json:"length"`
	Width           float64          `json:"width"`
	WallHeight      float64          `json:"wallHeight"`
	RoofPitch       string           `json:"roofPitch"`
	IncludeGables   bool             `json:"includeGables"`
	IsMetalSurface  bool             `json:"isMetalSurface"`
	AdditionalAreas []AdditionalArea `json:"additionalAreas"`
}

type Materials struct {
	OpenCellSets   float64         `json:"openCellSets"`
	ClosedCellSets float64         `json:"closedCellSets"`
	Inventory      []WarehouseItem `json:"inventory"`
	Equipment      []EquipmentItem `json:"equipment,omitempty"`
}

// Actuals is what the crew reports after finishing a job.
type Actuals struct {
	OpenCellSets     float64         `json:"openCellSets"`
	ClosedCellSets   float64         `json:"closedCellSets"`
	LaborHours       float64         `json:"laborHours"`
	Inventory        []WarehouseItem `json:"inventory"`
	Notes            string          `json:"notes"`
	CompletionPhotos []JobImage      `json:"completionPhotos"`
	CompletedBy      string          `json:"completedBy,omitempty"`
	CompletionDate   string          `json:"completionDate,omitempty"`
}

// Financials is computed by the remote store when a job is paid.
type Financials struct {
	Revenue      float64 `json:"revenue"`
	TotalCOGS    float64 `json:"totalCOGS"`
	ChemicalCost float64 `json:"chemicalCost"`
	LaborCost    float64 `json:"laborCost"`
	NetProfit    float64 `json:"netProfit"`
	Margin       float64 `json:"margin"`
}

// EstimateRecord is one job as it moves from estimate to paid invoice.
type EstimateRecord struct {
	ID                string             `json:"id"`
	CustomerID        string             `json:"customerId"`
	Date              string             `json:"date"`
	Status            EstimateStatus     `json:"status"`
	Customer          CustomerProfile    `json:"customer"`
	Inputs            JobInputs          `json:"inputs"`
	Results           CalculationResults `json:"results"`
	Materials         Materials          `json:"materials"`
	TotalValue        float64            `json:"totalValue"`
	WallSettings      FoamSettings       `json:"wallSettings"`
	RoofSettings      FoamSettings       `json:"roofSettings"`
	Expenses          Expenses           `json:"expenses"`
	Notes             string             `json:"notes,omitempty"`
	PricingMode       PricingMode        `json:"pricingMode,omitempty"`
	SqFtRates         *SqFtRates         `json:"sqFtRates,omitempty"`
	ExecutionStatus   ExecutionStatus    `json:"executionStatus,omitempty"`
	Actuals           *Actuals           `json:"actuals,omitempty"`
	Financials        *Financials        `json:"financials,omitempty"`
	WorkOrderSheetURL string             `json:"workOrderSheetUrl,omitempty"`
	SitePhotos        []JobImage         `json:"sitePhotos,omitempty"`
	ScheduledDate     string             `json:"scheduledDate,omitempty"`
	InvoiceDate       string             `json:"invoiceDate,omitempty"`
	InvoiceNumber     string             `json:"invoiceNumber,omitempty"`
	PaymentTerms      string             `json:"paymentTerms,omitempty"`
}

// EstimateForm is the transient "current form" used while building or
// editing an estimate. Its fields are flattened into AppData on the wire.
type EstimateForm struct {
	Mode            CalculationMode  `json:"mode"`
	Length          float64          `json:"length"`
	Width           float64          `json:"width"`
	WallHeight      float64          `json:"wallHeight"`
	RoofPitch       string           `json:"roofPitch"`
	IncludeGables   bool             `json:"includeGables"`
	IsMetalSurface  bool             `json:"isMetalSurface"`
	WallSettings    FoamSettings     `json:"wallSettings"`
	RoofSettings    FoamSettings     `json:"roofSettings"`
	AdditionalAreas []AdditionalArea `json:"additionalAreas"`
	Inventory       []WarehouseItem  `json:"inventory"`
	JobEquipment    []EquipmentItem  `json:"jobEquipment"`
	CustomerProfile CustomerProfile  `json:"customerProfile"`
	PricingMode     PricingMode      `json:"pricingMode"`
	SqFtRates       SqFtRates        `json:"sqFtRates"`
	Expenses        Expenses         `json:"expenses"`
	SitePhotos      []JobImage       `json:"sitePhotos"`
	ScheduledDate   string           `json:"scheduledDate"`
	JobNotes        string           `json:"jobNotes"`
	InvoiceDate     string           `json:"invoiceDate"`
	InvoiceNumber   string           `json:"invoiceNumber"`
	PaymentTerms    string           `json:"paymentTerms"`
}

// AppData is the company's full business state.
type AppData struct {
	EstimateForm

	Yields         Yields                  `json:"yields"`
	Costs          Costs                   `json:"costs"`
	Warehouse      Warehouse               `json:"warehouse"`
	Equipment      []EquipmentItem         `json:"equipment"`
	ShowPricing    bool                    `json:"showPricing"`
	CompanyProfile CompanyProfile          `json:"companyProfile"`
	Customers      []CustomerProfile       `json:"customers"`
	SavedEstimates []EstimateRecord        `json:"savedEstimates"`
	PurchaseOrders []PurchaseOrder         `json:"purchaseOrders"`
	MaterialLogs   []MaterialUsageLogEntry `json:"materialLogs"`
}

// FindEstimate returns the saved estimate with the given id.
func (d AppData) FindEstimate(id string) (EstimateRecord, bool) {
	for _, rec := range d.SavedEstimates {
		if rec.ID == id {
			return rec, true
		}
	}
	return EstimateRecord{}, false
}

// FindCustomer returns the roster customer with the given id.
func (d AppData) FindCustomer(id string) (CustomerProfile, bool) {
	for _, c := range d.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return CustomerProfile{}, false
}
