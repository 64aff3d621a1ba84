package pdf

import (
	"strings"
)

const (
	headerHeight = 90.0
	titleWidth   = 180.0
	titleHeight  = 24.0
	rowHeight    = 16.0
	labelWidth   = 120.0
	valueWidth   = 280.0
	photoWidth   = 74.0
	photoHeight  = 94.0
	sigBoxWidth  = 210.0
	sigBoxHeight = 100.0
	termsLines   = 10
	signatureTag = "[Signature]"
	brandText    = "DJEZZY"
)

var (
	fontTitle = FontSpec{Bold: true, Size: 11}
	fontLabel = FontSpec{Bold: true, Size: 9}
	fontValue = FontSpec{Size: 10}
	fontArab  = FontSpec{Arabic: true, Size: 11}
	fontSmall = FontSpec{Size: 8}
)

// resolvedAssets are the images a render could load. Nil means placeholder.
type resolvedAssets struct {
	Logo      *ImageAsset
	Photo     *ImageAsset
	Signature *ImageAsset
}

// builder carries what section builders need besides the data bundle.
type builder struct {
	m     Measurer
	tr    func(string) string
	shape func(string) string
}

// sectionTitle draws the red title tab and the rule under it.
func (b *builder) sectionTitle(blk *Block, key string) float64 {
	blk.add(
		Rect{X: margin, Y: 0, W: titleWidth, H: titleHeight, Fill: colorPtr(colorRed)},
		Text{X: margin + 8, Y: 0, W: titleWidth - 16, H: titleHeight, S: b.tr(key), Font: fontTitle, Color: colorWhite, Align: "L"},
		Line{X1: margin, Y1: titleHeight, X2: margin + contentWidth, Y2: titleHeight, Color: colorRed, Width: 1},
	)
	return titleHeight + 10
}

// row draws a label/value pair and returns the next y.
func (b *builder) row(blk *Block, y float64, labelKey, value string) float64 {
	blk.add(
		Text{X: margin, Y: y, W: labelWidth, H: rowHeight, S: b.tr(labelKey), Font: fontLabel, Color: colorTextGray, Align: "L"},
		Text{X: margin + labelWidth, Y: y, W: valueWidth, H: rowHeight, S: orDash(value), Font: fontValue, Color: colorBlack, Align: "L"},
	)
	return y + rowHeight
}

// arabicRow draws a shaped right-aligned value; empty values emit nothing.
func (b *builder) arabicRow(blk *Block, y float64, labelKey, value string) float64 {
	if strings.TrimSpace(value) == "" {
		return y
	}
	blk.add(
		Text{X: margin, Y: y, W: labelWidth, H: rowHeight, S: b.tr(labelKey), Font: fontLabel, Color: colorTextGray, Align: "L"},
		Text{X: margin + labelWidth, Y: y, W: valueWidth, H: rowHeight, S: b.shape(strings.TrimSpace(value)), Font: fontArab, Color: colorBlack, Align: "R"},
	)
	return y + rowHeight
}

func divider(blk *Block, y float64) float64 {
	blk.add(Line{X1: margin, Y1: y + 4, X2: margin + labelWidth + valueWidth, Y2: y + 4, Color: colorBorder, Width: 0.5})
	return y + 8
}

func buildHeader(d ContractData, a resolvedAssets, b *builder) Block {
	blk := Block{Name: "header", Height: headerHeight}
	blk.add(Rect{X: margin, Y: 0, W: contentWidth, H: headerHeight, Fill: colorPtr(colorRed)})

	if a.Logo != nil {
		x, y, w, h := fitBox(margin+12, 15, 120, 60, a.Logo.Width, a.Logo.Height)
		blk.add(Image{X: x, Y: y, W: w, H: h, Asset: a.Logo})
	} else {
		blk.add(Text{X: margin + 15, Y: 30, W: 140, H: 30, S: brandText, Font: FontSpec{Bold: true, Size: 26}, Color: colorWhite, Align: "L"})
	}

	right := margin + 160.0
	w := contentWidth - 175
	blk.add(
		Text{X: right, Y: 16, W: w, H: 22, S: b.tr("doc.title"), Font: FontSpec{Bold: true, Size: 16}, Color: colorWhite, Align: "R"},
		Text{X: right, Y: 42, W: w, H: 16, S: b.tr("doc.number") + " " + orDash(d.Number), Font: FontSpec{Size: 11}, Color: colorWhite, Align: "R"},
		Text{X: right, Y: 60, W: w, H: 16, S: b.tr("doc.date") + " : " + orDash(FormatDate(d.CreatedAt)), Font: FontSpec{Size: 10}, Color: colorWhite, Align: "R"},
	)
	return blk
}

func buildClientInfo(d ContractData, a resolvedAssets, b *builder) Block {
	blk := Block{Name: "client"}
	top := b.sectionTitle(&blk, "section.client")
	c := d.Client

	y := top
	y = b.row(&blk, y, "label.last_name", c.LastName)
	y = b.row(&blk, y, "label.first_name", c.FirstName)
	y = b.arabicRow(&blk, y, "label.last_ar", c.LastNameAr)
	y = b.arabicRow(&blk, y, "label.first_ar", c.FirstNameAr)
	y = divider(&blk, y)

	y = b.row(&blk, y, "label.birth_date", formatDatePtr(c.BirthDate))
	y = b.row(&blk, y, "label.birth_place", c.BirthPlace)
	y = b.arabicRow(&blk, y, "label.place_ar", c.BirthPlaceAr)
	y = b.row(&blk, y, "label.sex", c.Sex)
	if strings.TrimSpace(c.BloodType) != "" {
		y = b.row(&blk, y, "label.blood_type", c.BloodType)
	}
	y = divider(&blk, y)

	y = b.row(&blk, y, "label.id_number", c.IDNumber)
	y = b.row(&blk, y, "label.nin", c.NIN)
	y = b.row(&blk, y, "label.daira", c.Daira)
	y = b.row(&blk, y, "label.baladia", c.Baladia)
	y = b.row(&blk, y, "label.id_expiry", formatDatePtr(c.IDExpiry))

	px := margin + contentWidth - photoWidth
	if a.Photo != nil {
		x, iy, w, h := fitBox(px+2, top+2, photoWidth-4, photoHeight-4, a.Photo.Width, a.Photo.Height)
		blk.add(Image{X: x, Y: iy, W: w, H: h, Asset: a.Photo})
	} else {
		blk.add(
			Rect{X: px, Y: top, W: photoWidth, H: photoHeight, Fill: colorPtr(colorLightGray)},
			Text{X: px, Y: top, W: photoWidth, H: photoHeight, S: b.tr("label.photo"), Font: fontValue, Color: colorTextGray, Align: "C"},
		)
	}
	blk.add(Rect{X: px, Y: top, W: photoWidth, H: photoHeight, Stroke: colorPtr(colorRed), LineWidth: 2})

	blk.Height = max(y, top+photoHeight) + 6
	return blk
}

func buildContact(d ContractData, _ resolvedAssets, b *builder) Block {
	blk := Block{Name: "contact"}
	y := b.sectionTitle(&blk, "section.contact")
	c := d.Client

	y = b.row(&blk, y, "label.phone", FormatPhone(c.Phone))
	y = b.row(&blk, y, "label.email", c.Email)

	blk.add(Text{X: margin, Y: y, W: labelWidth, H: rowHeight, S: b.tr("label.address"), Font: fontLabel, Color: colorTextGray, Align: "L"})
	lines := Wrap(b.m, fontValue, c.Address, contentWidth-labelWidth, 2)
	if len(lines) == 0 {
		lines = []string{placeholder}
	}
	for _, l := range lines {
		blk.add(Text{X: margin + labelWidth, Y: y, W: contentWidth - labelWidth, H: rowHeight, S: l, Font: fontValue, Color: colorBlack, Align: "L"})
		y += rowHeight - 2
	}
	blk.Height = y + 6
	return blk
}

func buildOffer(d ContractData, _ resolvedAssets, b *builder) Block {
	blk := Block{Name: "offer"}
	y := b.sectionTitle(&blk, "section.offer")
	o := d.Offer
	if o == nil {
		o = &OfferData{}
	}

	name, price := orDash(o.Name), placeholder
	if d.Offer != nil {
		price = FormatPrice(o.Price, o.Currency)
	}
	blk.add(
		Rect{X: margin, Y: y, W: contentWidth, H: 32, Fill: colorPtr(colorLightRed), Stroke: colorPtr(colorRed), LineWidth: 1},
		Text{X: margin + 10, Y: y, W: contentWidth * 0.6, H: 32, S: name, Font: FontSpec{Bold: true, Size: 14}, Color: colorBlack, Align: "L"},
		Text{X: margin + contentWidth*0.6, Y: y, W: contentWidth*0.4 - 10, H: 32, S: price, Font: FontSpec{Bold: true, Size: 16}, Color: colorRed, Align: "R"},
	)
	y += 40

	number := ""
	if d.Phone != nil {
		number = FormatPhone(d.Phone.Number)
	}
	y = b.row(&blk, y, "label.number", number)
	for _, r := range []struct{ key, value string }{
		{"label.data", FormatData(o.DataMB, b.tr)},
		{"label.validity", FormatValidity(o.ValidityDays, b.tr)},
		{"label.voice", FormatVoice(o.VoiceMinutes, b.tr)},
		{"label.sms", FormatSMS(o.SMSCount)},
	} {
		if r.value != "" {
			y = b.row(&blk, y, r.key, r.value)
		}
	}

	y += 4
	blk.add(Text{X: margin, Y: y, W: contentWidth, H: rowHeight, S: b.tr("label.features"), Font: FontSpec{Bold: true, Size: 10}, Color: colorBlack, Align: "L"})
	y += rowHeight
	for _, f := range offerFeatures(o.Features, b.tr) {
		for i, l := range Wrap(b.m, fontValue, f, contentWidth-30, 2) {
			if i == 0 {
				blk.add(Text{X: margin + 10, Y: y, W: 12, H: 14, S: "•", Font: fontValue, Color: colorRed, Align: "L"})
			}
			blk.add(Text{X: margin + 22, Y: y, W: contentWidth - 30, H: 14, S: l, Font: fontValue, Color: colorBlack, Align: "L"})
			y += 14
		}
	}
	blk.Height = y + 6
	return blk
}

// offerFeatures returns the non-blank features, or the default three.
func offerFeatures(features []string, tr func(string) string) []string {
	var out []string
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = []string{tr("feature.calls"), tr("feature.data"), tr("feature.sms")}
	}
	return out
}

func buildTerms(_ ContractData, _ resolvedAssets, b *builder) Block {
	blk := Block{Name: "terms"}
	y := b.sectionTitle(&blk, "section.terms")
	for _, l := range Wrap(b.m, fontSmall, b.tr("terms.body"), contentWidth, termsLines) {
		blk.add(Text{X: margin, Y: y, W: contentWidth, H: 10, S: l, Font: fontSmall, Color: colorTermsText, Align: "L"})
		y += 10
	}
	blk.Height = y + 6
	return blk
}

func buildSignature(d ContractData, a resolvedAssets, b *builder) Block {
	blk := Block{Name: "signature"}
	top := b.sectionTitle(&blk, "section.signature")

	blk.add(Rect{X: margin, Y: top, W: sigBoxWidth, H: sigBoxHeight, Stroke: colorPtr(colorBorder), LineWidth: 1})
	if a.Signature != nil {
		x, y, w, h := fitBox(margin+5, top+10, sigBoxWidth-10, sigBoxHeight-20, a.Signature.Width, a.Signature.Height)
		blk.add(Image{X: x, Y: y, W: w, H: h, Asset: a.Signature})
	} else {
		blk.add(Text{X: margin, Y: top, W: sigBoxWidth, H: sigBoxHeight, S: signatureTag, Font: fontValue, Color: colorTextGray, Align: "C"})
	}

	x := margin + sigBoxWidth + 20
	w := contentWidth - sigBoxWidth - 20
	name := d.Client.FullName()
	if name == "" {
		name = b.tr("client.default")
	}
	blk.add(
		Text{X: x, Y: top, W: w, H: 18, S: name, Font: FontSpec{Bold: true, Size: 11}, Color: colorBlack, Align: "L"},
		Text{X: x, Y: top + 20, W: w, H: 16, S: b.tr("doc.date") + " : " + orDash(FormatDate(d.CreatedAt)), Font: fontValue, Color: colorTextGray, Align: "L"},
	)

	confirm := FontSpec{Size: 9}
	lines := Wrap(b.m, confirm, b.tr("signature.confirm"), w-16, 2)
	boxY := top + sigBoxHeight - 44
	blk.add(Rect{X: x, Y: boxY, W: w, H: 44, Fill: colorPtr(colorGreenBg), Stroke: colorPtr(colorGreen), LineWidth: 0.5})
	ly := boxY + (44-float64(len(lines))*12)/2
	for _, l := range lines {
		blk.add(Text{X: x + 8, Y: ly, W: w - 16, H: 12, S: l, Font: confirm, Color: colorGreen, Align: "C"})
		ly += 12
	}

	blk.Height = top + sigBoxHeight + 6
	return blk
}

// sectionBuilders lists the document sections in drawing order.
var sectionBuilders = []func(ContractData, resolvedAssets, *builder) Block{
	buildHeader,
	buildClientInfo,
	buildContact,
	buildOffer,
	buildTerms,
	buildSignature,
}
