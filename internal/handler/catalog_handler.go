package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// ---- stores ----

func (h *CatalogHandler) GetStores(c *fiber.Ctx) error {
	stores, err := h.service.ListStores(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stores)
}

func (h *CatalogHandler) GetStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	store, err := h.service.GetStore(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(store)
}

func (h *CatalogHandler) CreateStore(c *fiber.Ctx) error {
	var store model.Store
	if err := parseBody(c, &store); err != nil {
		return err
	}
	if err := h.service.CreateStore(c.UserContext(), &store); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Store created", "data": store})
}

func (h *CatalogHandler) UpdateStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var upd model.StoreUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	store, err := h.service.UpdateStore(c.UserContext(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Store updated", "data": store})
}

func (h *CatalogHandler) DeleteStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteStore(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Store deleted"})
}

// ---- units ----

func (h *CatalogHandler) GetUnits(c *fiber.Ctx) error {
	units, err := h.service.ListUnits(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(units)
}

func (h *CatalogHandler) GetUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	unit, err := h.service.GetUnit(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(unit)
}

func (h *CatalogHandler) CreateUnit(c *fiber.Ctx) error {
	var unit model.Unit
	if err := parseBody(c, &unit); err != nil {
		return err
	}
	if err := h.service.CreateUnit(c.UserContext(), &unit); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Unit created", "data": unit})
}

func (h *CatalogHandler) UpdateUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var upd model.UnitUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	unit, err := h.service.UpdateUnit(c.UserContext(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Unit updated", "data": unit})
}

func (h *CatalogHandler) DeleteUnit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUnit(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Unit deleted"})
}

// ---- products ----

// GetProducts lists products, optionally of one store (?store_id=).
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	storeID, err := queryID(c, "store_id")
	if err != nil {
		return err
	}
	products, err := h.service.ListProducts(c.UserContext(), storeID)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := parseBody(c, &product); err != nil {
		return err
	}
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var upd model.ProductUpdate
	if err := parseBody(c, &upd); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, upd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
