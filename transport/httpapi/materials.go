package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-loans-go/features/inventory"
	"github.com/AntonStoeckl/library-loans-go/lending"
)

type materialHandlers struct {
	inventory *inventory.Service
}

func (h materialHandlers) addBook(c echo.Context) error {
	var req inventory.AddBookCommand
	if err := c.Bind(&req); err != nil {
		return err
	}

	book, err := h.inventory.AddBook(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, book)
}

func (h materialHandlers) addSpecialItem(c echo.Context) error {
	var req inventory.AddSpecialItemCommand
	if err := c.Bind(&req); err != nil {
		return err
	}

	item, err := h.inventory.AddSpecialItem(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, item)
}

func (h materialHandlers) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	material, err := h.inventory.GetMaterial(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, material)
}

// find supports ?kind=BOOK|SPECIAL_ITEM, ?q=text and ?from=/?to= intake dates.
func (h materialHandlers) find(c echo.Context) error {
	builder := lending.BuildMaterialFilter().Containing(c.QueryParam("q"))

	if raw := c.QueryParam("kind"); raw != "" {
		kind, err := lending.ParseMaterialKind(raw)
		if err != nil {
			return err
		}

		builder = builder.OfKind(kind)
	}

	from, err := queryDate(c, "from")
	if err != nil {
		return err
	}

	to, err := queryDate(c, "to")
	if err != nil {
		return err
	}

	materials, err := h.inventory.FindMaterials(c.Request().Context(), builder.IntakeBetween(from, to).Finalize())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, materials)
}
