package sqlinline

const QInsertImageMetadata = `--sql 7f2f2a9e-6f3a-4a44-9a0f-0d8a3f4c11d2
insert into image_metadata(
  image_id,
  storage_path,
  public_url,
  prompt,
  ad_text,
  category,
  size,
  is_reference,
  title
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const QSelectImages = `--sql 3c1d1f77-92ab-4f3e-8a46-56b4d9e0a915
select image_id, storage_path, public_url, prompt, ad_text, category, size, is_reference, title, created_at
from image_metadata
where ($3::bool or not is_reference)
order by created_at desc
limit $1 offset $2;
`

const QSelectImagesByCategory = `--sql e58b0b44-1a0c-4ab8-b1f5-2f8f5d6c03aa
select image_id, storage_path, public_url, prompt, ad_text, category, size, is_reference, title, created_at
from image_metadata
where category = $1
order by created_at desc
limit $2;
`

const QSearchImages = `--sql 94dd7a0b-58c0-4d38-9a71-6cc3e0b2f4d8
select image_id, storage_path, public_url, prompt, ad_text, category, size, is_reference, title, created_at
from image_metadata
where prompt ilike '%' || $1 || '%' or ad_text ilike '%' || $1 || '%'
order by created_at desc
limit $2;
`

const QDeleteImageMetadata = `--sql 0ab4c6f1-3e57-4bb2-9c44-8e1f7a2d5b60
delete from image_metadata
where image_id = $1;
`
