package handlers

import (
	"fmt"

	"ecoshop/internal/catalog"
	"ecoshop/internal/match"
	"ecoshop/internal/shop"
	"ecoshop/internal/storefront"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonsInRow = 5 // кнопок с ID товаров в ряду

// CreateShopKeyboard builds the listing keyboard: pagination, product
// buttons, category filters and sort orders.
func CreateShopKeyboard(page storefront.ListingPage) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var nav []tgbotapi.InlineKeyboardButton
	if page.Page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("← Zurück",
			fmt.Sprintf("prev_%d", page.Page)))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page.Page, page.Pages),
		"current"))
	if page.Page < page.Pages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Weiter →",
			fmt.Sprintf("next_%d", page.Page)))
	}
	rows = append(rows, nav)

	var currentRow []tgbotapi.InlineKeyboardButton
	for i, item := range page.Items {
		if i > 0 && i%buttonsInRow == 0 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("ID%d", item.Product.ID),
			fmt.Sprintf("product_%d", item.Product.ID)))
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	// категории по две в ряд, выбранные отмечены галочкой
	allLabel := "Alle"
	if len(page.Query.Categories) == 0 {
		allLabel = "✓ Alle"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(allLabel, "cat_all")))
	currentRow = nil
	for i, c := range catalog.Categories() {
		label := c
		if n, ok := page.CategoryCounts[c]; ok {
			label = fmt.Sprintf("%s (%d)", c, n)
		}
		if page.Query.HasCategory(c) {
			label = "✓ " + c
		}
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("cat_%d", i)))
		if len(currentRow) == 2 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	currentRow = nil
	for _, o := range shop.SortOrders() {
		label := o.Label()
		if o == page.Query.Sort {
			label = "• " + label
		}
		currentRow = append(currentRow, tgbotapi.NewInlineKeyboardButtonData(label, "sort_"+string(o)))
		if len(currentRow) == 2 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Präferenzen", "prefs"),
		tgbotapi.NewInlineKeyboardButtonData("Start", "start"),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CreateProductKeyboard builds the add-to-cart form of a product page.
func CreateProductKeyboard(view *storefront.ProductView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	sel := view.Selection
	p := view.Product

	if len(p.Sizes) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for _, s := range p.Sizes {
			label := s
			if s == sel.Size {
				label = "✓ " + s
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "size_"+s))
		}
		rows = append(rows, row)
	}
	if len(p.Colors) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for i, c := range p.Colors {
			label := c
			if c == sel.Color {
				label = "✓ " + c
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "color_"+c))
			if (i+1)%2 == 0 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if p.InStock {
		var qty []tgbotapi.InlineKeyboardButton
		if sel.Quantity > 1 {
			qty = append(qty, tgbotapi.NewInlineKeyboardButtonData("-", "qty_del"))
		}
		qty = append(qty, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", sel.Quantity), "current"))
		qty = append(qty, tgbotapi.NewInlineKeyboardButtonData("+", "qty_add"))
		rows = append(rows, qty)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("In den Warenkorb – %s", formatPrice(p.Price*float64(sel.Quantity))),
				"addcart")))
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("← Zum Shop", "back_shop"),
		tgbotapi.NewInlineKeyboardButtonData("Präferenzen", "prefs"),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CreateImportanceKeyboard shows one row per attribute: its label and the
// four importance levels, the current one marked.
func CreateImportanceKeyboard(imp match.Importance) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, attr := range catalog.Attributes() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(attr.Label, "current")))
		var row []tgbotapi.InlineKeyboardButton
		for v := catalog.MinImportance; v <= catalog.MaxImportance; v++ {
			label := fmt.Sprintf("%d", v)
			if imp.Get(attr.Key) == v {
				label = fmt.Sprintf("[%d]", v)
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label,
				fmt.Sprintf("imp_%s_%d", attr.Key, v)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Zum Shop", "back_shop"),
		tgbotapi.NewInlineKeyboardButtonData("Start", "start"),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func CreateCartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Weiter einkaufen", "back_shop"),
			tgbotapi.NewInlineKeyboardButtonData("Bestellen", "confirm"),
		),
	)
}

func CreateStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Shop", "back_shop"),
			tgbotapi.NewInlineKeyboardButtonData("Präferenzen", "prefs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Warenkorb", "cart"),
		),
	)
}
