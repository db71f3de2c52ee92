package notifications

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

const leaseDetailsTemplate = `{{define "details"}}Información General:
Tienda: {{.StoreName}}
Cliente: {{.CustomerName}}
Tipo de Medio: {{.MediaType}}
Dimensiones: {{na .Dimensions}}
Fecha de Inicio: {{day .StartDate}}
Fecha de Fin: {{day .EndDate}}
Monto: ${{.Amount.StringFixed 2}}

Información de Campaña:
Información del Proveedor: {{na .Campaign.ProviderInfo}}
Detalles del Producto: {{na .Campaign.ProductDetails}}
URL del Producto: {{na .Campaign.ProductURL}}
Redirección de Campaña: {{na .Campaign.CampaignRedirect}}
Objetivos de Marketing: {{na .Campaign.MarketingGoals}}
Público Objetivo: {{na .Campaign.TargetAudience}}

Información Adicional:
Línea Gráfica: {{na .Campaign.BrandGraphics}}
Contacto del Proveedor: {{na .Campaign.ProviderContact}}
Detalles de Campaña de Regalo: {{na .Campaign.GiftCampaignDetails}}
Disclaimer: {{na .Campaign.Disclaimer}}
{{- if .Campaign.PlanALaMedida}}

Plan a la Medida URL: {{.Campaign.PlanALaMedida}}
Monto Plan a la Medida: ${{.Campaign.PlanALaMedidaAmount}}
{{- end}}{{end}}`

var bodyTemplates = map[enums.NotificationKind]string{
	enums.NotificationKindLeaseCreated: `Se ha recibido una nueva solicitud:

{{template "details" .}}

Para ver más detalles, ingrese al sistema.`,

	enums.NotificationKindCampaignRedirectPending: `Se ha recibido una nueva solicitud AGRUPADA que requiere atención:

{{template "details" .}}

Para actualizar la URL de agrupación, visite:
{{.RedirectLink}}

Para ver más detalles, ingrese al sistema.`,

	enums.NotificationKindCampaignRedirectUpdated: `Se ha actualizado la URL de agrupación para la siguiente solicitud:

Información General:
Tienda: {{.StoreName}}
Cliente: {{.CustomerName}}
Tipo de Medio: {{.MediaType}}

Nueva URL de Agrupación: {{.RedirectURL}}

Para ver más detalles, ingrese al sistema.`,
}

var subjectPrefixes = map[enums.NotificationKind]string{
	enums.NotificationKindLeaseCreated:            "Nueva Solicitud Recibida",
	enums.NotificationKindCampaignRedirectPending: "Solicitud Agrupada Recibida",
	enums.NotificationKindCampaignRedirectUpdated: "URL de Agrupación Actualizada",
}

var templateFuncs = template.FuncMap{
	"na": func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "N/A"
		}
		return value
	},
	"day": calendar.Format,
}

var emailTemplates = mustParseTemplates()

func mustParseTemplates() map[enums.NotificationKind]*template.Template {
	out := make(map[enums.NotificationKind]*template.Template, len(bodyTemplates))
	for kind, body := range bodyTemplates {
		out[kind] = template.Must(template.New(string(kind)).Funcs(templateFuncs).Parse(leaseDetailsTemplate + body))
	}
	return out
}

type emailView struct {
	Payload
	RedirectLink string
}

func renderSubject(kind enums.NotificationKind, p Payload) string {
	return subjectPrefixes[kind] + " - " + p.StoreName
}

func renderBody(kind enums.NotificationKind, view emailView) (string, error) {
	tmpl, ok := emailTemplates[kind]
	if !ok {
		return "", errUnknownKind(kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
