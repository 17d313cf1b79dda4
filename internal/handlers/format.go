package handlers

import (
	"fmt"
	"strings"

	"ecoshop/internal/catalog"
	"ecoshop/internal/match"
	"ecoshop/internal/models"
	"ecoshop/internal/shop"
	"ecoshop/internal/storefront"
)

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func attributeLabels(keys []string) string {
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, catalog.Label(k))
	}
	return strings.Join(labels, ", ")
}

func formatListing(l shop.Listing) string { // строка товара в списке
	p := l.Product
	line := fmt.Sprintf("ID%d %s – %s ★%.1f (%d)\n   %s",
		p.ID, p.Name, formatPrice(p.Price), p.Rating, p.Reviews, p.Category)
	if l.Match.Percentage > 0 {
		line += fmt.Sprintf(" · %.0f%% Match", l.Match.Percentage)
	}
	if !p.InStock {
		line += " · nicht vorrätig"
	}
	if len(p.Attributes) > 0 {
		line += "\n   " + attributeLabels(p.Attributes)
	}
	return line
}

func formatShop(page storefront.ListingPage) string {
	if page.Count == 0 {
		return "Keine Produkte gefunden. Filter anpassen."
	}
	var b strings.Builder
	if page.Total > page.Count {
		fmt.Fprintf(&b, "Nachhaltige Produkte (%d von %d)\n", page.Count, page.Total)
	} else {
		fmt.Fprintf(&b, "Nachhaltige Produkte (%d)\n", page.Count)
	}
	fmt.Fprintf(&b, "Sortierung: %s\n", page.Query.Sort.Label())
	if len(page.Query.Categories) > 0 {
		fmt.Fprintf(&b, "Kategorien: %s\n", strings.Join(page.Query.Categories, ", "))
	}
	b.WriteString("\n")
	for _, item := range page.Items {
		b.WriteString(formatListing(item))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var bandLabels = map[match.Band]string{
	match.BandHigh:   "sehr gut",
	match.BandMedium: "gut",
	match.BandLow:    "mäßig",
	match.BandPoor:   "schwach",
}

func formatProductView(view *storefront.ProductView) string { // карточка товара
	p := view.Product
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", p.Name, p.Category)

	fmt.Fprintf(&b, "Preis: %s", formatPrice(p.Price))
	if p.OriginalPrice > p.Price {
		fmt.Fprintf(&b, " (statt %s)", formatPrice(p.OriginalPrice))
	}
	fmt.Fprintf(&b, "\nBewertung: ★%.1f (%d Bewertungen)\n", p.Rating, p.Reviews)
	if !p.InStock {
		b.WriteString("Nicht vorrätig\n")
	}

	desc := p.LongDescription
	if desc == "" {
		desc = p.Description
	}
	fmt.Fprintf(&b, "\n%s\n", desc)
	if len(p.Attributes) > 0 {
		fmt.Fprintf(&b, "\nNachhaltigkeit: %s\n", attributeLabels(p.Attributes))
	}

	d := view.Detail
	if d.Total == 0 {
		b.WriteString("\nLege mit /prefs fest, was dir wichtig ist, um den Match zu sehen.")
	} else {
		fmt.Fprintf(&b, "\nDein Match: %.0f%% (%s)\n", d.Percentage, bandLabels[view.Band])
		fmt.Fprintf(&b, "Punkte: +%d / -%d (netto %d)\n", d.Positive, d.Penalty, d.Net)
		for _, line := range view.Breakdown {
			if line.Points == 0 {
				continue
			}
			mark := "✓"
			if !line.Present {
				mark = "✗"
			}
			fmt.Fprintf(&b, "%s %s: %+d\n", mark, line.Attribute.Label, line.Points)
		}
		if w := d.Warning(); w != "" {
			fmt.Fprintf(&b, "\n⚠ %s", w)
		}
	}

	sel := view.Selection
	if len(p.Sizes) > 0 || len(p.Colors) > 0 {
		b.WriteString("\n\nAuswahl:")
		if len(p.Sizes) > 0 {
			fmt.Fprintf(&b, " Größe %s", orDash(sel.Size))
		}
		if len(p.Colors) > 0 {
			fmt.Fprintf(&b, " · Farbe %s", orDash(sel.Color))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "–"
	}
	return s
}

func formatImportance(imp match.Importance) string {
	var b strings.Builder
	b.WriteString("Wie wichtig ist dir …?\n")
	for _, l := range catalog.ImportanceScale() {
		fmt.Fprintf(&b, "%d = %s\n", l.Value, l.Label)
	}
	b.WriteString("\n")
	for _, attr := range catalog.Attributes() {
		v := imp.Get(attr.Key)
		fmt.Fprintf(&b, "%s: %d – %s\n", attr.Label, v, catalog.ImportanceLabel(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSummary(top []string) string {
	if len(top) == 0 {
		return "Noch keine Prioritäten. Bewerte Kriterien mit /prefs ab Stufe 3."
	}
	return "Deine Top-Prioritäten: " + strings.Join(top, ", ")
}

func formatUser(u models.User) string { // профиль
	return fmt.Sprintf("Angemeldet als %s\nE-Mail: %s\nVorname: %s\nNachname: %s",
		u.DisplayName(), u.Email, orDash(u.FirstName), orDash(u.LastName))
}

// formatCart renders the open cart; lookup resolves product names.
func formatCart(cart *models.OrderWithItems, lookup func(int) (*models.Product, error)) string {
	if cart == nil || len(cart.Items) == 0 {
		return "Dein Warenkorb ist leer."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Warenkorb #%d\n\n", cart.Order.ID)
	for _, item := range cart.Items {
		name := fmt.Sprintf("Produkt %d", item.ProductID)
		if p, err := lookup(item.ProductID); err == nil {
			name = p.Name
		}
		var opts []string
		if item.Size != "" {
			opts = append(opts, item.Size)
		}
		if item.Color != "" {
			opts = append(opts, item.Color)
		}
		if len(opts) > 0 {
			name += " (" + strings.Join(opts, ", ") + ")"
		}
		fmt.Fprintf(&b, "%s × %d – %s\n", name, item.Quantity, formatPrice(item.Total()))
	}
	fmt.Fprintf(&b, "\nGesamt: %s", formatPrice(cart.Total()))
	return b.String()
}

func formatSearch(query string, products []models.Product) string {
	if len(products) == 0 {
		return "Zu „" + query + "“ wurden keine Produkte gefunden."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Suchergebnisse für „%s“\n\n", query)
	for _, p := range products {
		fmt.Fprintf(&b, "ID%d %s – %s\n", p.ID, p.Name, formatPrice(p.Price))
	}
	b.WriteString("\nDetails: /product <id>")
	return b.String()
}

var statusLabels = map[string]string{
	models.OrderStatusNew:       "Warenkorb",
	models.OrderStatusConfirmed: "bestätigt",
}

func formatOrders(orders []models.Order) string { // история заказов
	if len(orders) == 0 {
		return "Noch keine Bestellungen."
	}
	var b strings.Builder
	b.WriteString("Deine Bestellungen\n\n")
	for _, o := range orders {
		status := statusLabels[o.Status]
		if status == "" {
			status = o.Status
		}
		fmt.Fprintf(&b, "#%d – %s – %s – %s\n", o.ID, formatPrice(o.Amount), status, o.CreatedAt.Format("02.01.2006 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}
