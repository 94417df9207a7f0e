package sqlinline

const templateColumns = `
    id::text, church_id::text, template_type, subject, body_html, body_text, updated_at`

// QSelectTemplate reads one template; a null $1 selects system scope.
const QSelectTemplate = `--sql fdb785aa-f4f3-4e5f-b98c-12ec68872435
select` + templateColumns + `
from email_templates
where church_id is not distinct from $1::uuid and template_type = $2::text
limit 1;
`

const QListTemplates = `--sql 9b560732-5f1f-4883-93cb-5104defdf8d9
select` + templateColumns + `
from email_templates
where church_id is not distinct from $1::uuid
order by template_type;
`

const QUpsertChurchTemplate = `--sql e82c8404-3a0c-4139-a4e8-98fa72bd015d
insert into email_templates (church_id, template_type, subject, body_html, body_text)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text)
on conflict (church_id, template_type) where church_id is not null do update set
    subject = excluded.subject,
    body_html = excluded.body_html,
    body_text = excluded.body_text,
    updated_at = now()
returning id::text, updated_at;
`

const QUpsertSystemTemplate = `--sql f2485ede-a59b-4e4e-b71b-10463e4f1375
insert into email_templates (church_id, template_type, subject, body_html, body_text)
values (null, $1::text, $2::text, $3::text, $4::text)
on conflict (template_type) where church_id is null do update set
    subject = excluded.subject,
    body_html = excluded.body_html,
    body_text = excluded.body_text,
    updated_at = now()
returning id::text, updated_at;
`

const QDeleteChurchTemplate = `--sql fac67e89-9c37-4ab2-bbcd-c5f8d6bc94b1
delete from email_templates
where church_id = $1::uuid and template_type = $2::text;
`
