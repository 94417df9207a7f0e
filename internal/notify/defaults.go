package notify

import "github.com/jmspivey7/PlateSync-sub002/internal/domain"

// builtin templates apply when neither the church nor the operators saved one.
var builtin = map[domain.TemplateType]domain.EmailTemplate{
	domain.TemplateWelcome: {
		Type:    domain.TemplateWelcome,
		Subject: "Welcome to PlateSync, {{churchName}}",
		BodyHTML: `<p>Hi {{firstName}},</p>
<p>{{churchName}} is ready to start counting. Your free trial is active and you can sign in at
<a href="{{loginLink}}">{{loginLink}}</a>.</p>
<p>The PlateSync team</p>`,
		BodyText: `Hi {{firstName}},

{{churchName}} is ready to start counting. Your free trial is active and you can sign in at {{loginLink}}.

The PlateSync team`,
	},
	domain.TemplatePasswordReset: {
		Type:    domain.TemplatePasswordReset,
		Subject: "Reset your PlateSync password",
		BodyHTML: `<p>Hi {{firstName}},</p>
<p>Use the link below to choose a new password. It expires in one hour.</p>
<p><a href="{{resetLink}}">{{resetLink}}</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`,
		BodyText: `Hi {{firstName}},

Use the link below to choose a new password. It expires in one hour.

{{resetLink}}

If you did not ask for this, you can ignore this email.`,
	},
	domain.TemplateDonationConfirmation: {
		Type:    domain.TemplateDonationConfirmation,
		Subject: "Thank you for your gift to {{churchName}}",
		BodyHTML: `<p>Dear {{donorName}},</p>
<p>Thank you for your {{donationType}} gift of <strong>{{amount}}</strong> received on {{donationDate}}.</p>
<p>With gratitude,<br>{{churchName}}</p>`,
		BodyText: `Dear {{donorName}},

Thank you for your {{donationType}} gift of {{amount}} received on {{donationDate}}.

With gratitude,
{{churchName}}`,
	},
	domain.TemplateCountReport: {
		Type:    domain.TemplateCountReport,
		Subject: "Count report: {{batchName}}",
		BodyHTML: `<p>The count <strong>{{batchName}}</strong> for {{countDate}} has been finalized.</p>
<table>
<tr><td>Total</td><td>{{totalAmount}}</td></tr>
<tr><td>Cash</td><td>{{cashAmount}}</td></tr>
<tr><td>Checks</td><td>{{checkAmount}}</td></tr>
<tr><td>Donations</td><td>{{donationCount}}</td></tr>
</table>
<p>Attested by {{primaryAttestor}} and {{secondaryAttestor}}.</p>`,
		BodyText: `The count {{batchName}} for {{countDate}} has been finalized.

Total: {{totalAmount}}
Cash: {{cashAmount}}
Checks: {{checkAmount}}
Donations: {{donationCount}}

Attested by {{primaryAttestor}} and {{secondaryAttestor}}.`,
	},
}

// Default returns the built-in template for kind.
func Default(kind domain.TemplateType) (domain.EmailTemplate, bool) {
	tpl, ok := builtin[kind]
	return tpl, ok
}
