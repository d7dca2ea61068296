package render

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerInfo carries the seller requisites printed on every invoice
type SellerInfo struct {
	Name        string // short display name
	NameFull    string // full legal name
	TaxID       string // ИНН
	TaxSubID    string // КПП, empty for sole proprietors
	RegNum      string // ОГРН / ОГРНИП
	Address     string
	Phone       string
	Email       string
	BankName    string
	BankCode    string // БИК
	Account     string // settlement account
	CorrAccount string // correspondent account
}

// BuyerInfo carries the buyer details printed on the invoice
type BuyerInfo struct {
	Name     string
	TaxID    string
	TaxSubID string
	Address  string
}

// InvoiceLine is a single service row on the invoice
type InvoiceLine struct {
	Name   string
	Period string
	Amount decimal.Decimal
}

// InvoiceData is the full set of fields the invoice template consumes
type InvoiceData struct {
	Number      string
	IssueDate   time.Time
	DueDate     time.Time
	Seller      SellerInfo
	Buyer       BuyerInfo
	Lines       []InvoiceLine
	TotalAmount decimal.Decimal
}

// invoiceTemplate is the offer-invoice (счёт-оферта) layout. The document
// doubles as a public offer: payment of the invoice constitutes acceptance.
const invoiceTemplate = `<div class="invoice">
  <table class="requisites">
    <tr>
      <td class="bank-name" colspan="2">{{.Seller.BankName}}<div class="label">Банк получателя</div></td>
      <td class="field-label">БИК</td>
      <td>{{.Seller.BankCode}}</td>
    </tr>
    <tr>
      <td class="field-label" colspan="2"></td>
      <td class="field-label">К/Сч №</td>
      <td>{{.Seller.CorrAccount}}</td>
    </tr>
    <tr>
      <td>ИНН {{.Seller.TaxID}}</td>
      <td>{{if .Seller.TaxSubID}}КПП {{.Seller.TaxSubID}}{{end}}</td>
      <td class="field-label">Р/Сч №</td>
      <td rowspan="2">{{.Seller.Account}}</td>
    </tr>
    <tr>
      <td colspan="2">{{.Seller.NameFull}}<div class="label">Получатель</div></td>
      <td></td>
    </tr>
  </table>

  <h1>Счёт-оферта № {{.Number}} от {{formatDate .IssueDate}}</h1>
  <hr class="title-rule"/>

  <table class="parties">
    <tr>
      <td class="party-label">Исполнитель:</td>
      <td>{{.Seller.NameFull}}, ИНН {{.Seller.TaxID}}{{if .Seller.TaxSubID}}, КПП {{.Seller.TaxSubID}}{{end}}, {{.Seller.Address}}</td>
    </tr>
    <tr>
      <td class="party-label">Заказчик:</td>
      <td>{{.Buyer.Name}}, ИНН {{.Buyer.TaxID}}{{if .Buyer.TaxSubID}}, КПП {{.Buyer.TaxSubID}}{{end}}{{if .Buyer.Address}}, {{.Buyer.Address}}{{end}}</td>
    </tr>
    <tr>
      <td class="party-label">Срок оплаты:</td>
      <td>{{formatDate .DueDate}}</td>
    </tr>
  </table>

  <table class="items">
    <thead>
      <tr>
        <th class="num">№</th>
        <th>Наименование работ, услуг</th>
        <th class="period">Период</th>
        <th class="amount">Стоимость, руб.</th>
      </tr>
    </thead>
    <tbody>
      {{- range $i, $line := .Lines}}
      <tr>
        <td class="num">{{add $i 1}}</td>
        <td>{{$line.Name}}</td>
        <td class="period">{{$line.Period}}</td>
        <td class="amount">{{formatMoney $line.Amount}}</td>
      </tr>
      {{- end}}
      <tr class="summary">
        <td colspan="3">Без налога (НДС)</td>
        <td class="amount">—</td>
      </tr>
      <tr class="summary total">
        <td colspan="3">ИТОГО:</td>
        <td class="amount">{{formatMoney .TotalAmount}}</td>
      </tr>
    </tbody>
  </table>

  <p class="total-words">Всего к оплате: <b>{{amountInWords .TotalAmount}}</b></p>

  <div class="offer-terms">
    <p>Настоящий счёт-оферта является предложением заключить договор возмездного
    оказания услуг на указанных выше условиях. Оплата счёта означает согласие с
    условиями оферты (акцепт) в соответствии со ст. 438 ГК РФ.</p>
    <p>Услуги считаются оказанными надлежащим образом и принятыми Заказчиком в
    полном объёме, если в течение пяти рабочих дней с момента оказания услуг
    Заказчик не заявил мотивированного отказа от их приёмки.</p>
    <p>Счёт действителен к оплате до {{formatDate .DueDate}} включительно.</p>
  </div>

  <div class="signature">
    <p>Исполнитель: {{.Seller.NameFull}}</p>
    {{- if .Seller.Phone}}
    <p class="contact">Тел.: {{.Seller.Phone}}{{if .Seller.Email}}, e-mail: {{.Seller.Email}}{{end}}</p>
    {{- end}}
  </div>
</div>

<style>
  .invoice { font-family: 'Arial', 'DejaVu Sans', sans-serif; font-size: 11pt; color: #000; }
  .invoice h1 { font-size: 15pt; margin: 18px 0 2px 0; }
  .title-rule { border: none; border-top: 2px solid #000; margin: 0 0 14px 0; }
  .requisites { width: 100%; border-collapse: collapse; }
  .requisites td { border: 1px solid #000; padding: 3px 6px; vertical-align: top; }
  .requisites .label { font-size: 8pt; color: #333; }
  .requisites .field-label { width: 60px; }
  .parties { width: 100%; margin-bottom: 12px; }
  .parties td { padding: 2px 4px; vertical-align: top; }
  .party-label { width: 110px; font-weight: bold; white-space: nowrap; }
  .items { width: 100%; border-collapse: collapse; margin-bottom: 8px; }
  .items th, .items td { border: 1px solid #000; padding: 4px 6px; }
  .items th { background: #eee; }
  .items .num { width: 28px; text-align: center; }
  .items .period { width: 130px; text-align: center; }
  .items .amount { width: 120px; text-align: right; }
  .items .summary td { border: none; text-align: right; padding-top: 2px; }
  .items .total td { font-weight: bold; }
  .total-words { margin: 10px 0 18px 0; }
  .offer-terms { font-size: 9pt; color: #222; }
  .offer-terms p { margin: 6px 0; }
  .signature { margin-top: 24px; }
  .signature .contact { font-size: 9pt; color: #333; }
</style>`

// BuildInvoiceHTML renders the invoice data into a self-contained HTML
// fragment ready for the PDF renderer. Output is deterministic for the
// same input.
func BuildInvoiceHTML(engine *TemplateEngine, data InvoiceData) (string, error) {
	return engine.Render("invoice", invoiceTemplate, data)
}
