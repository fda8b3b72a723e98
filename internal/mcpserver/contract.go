package mcpserver

// GalleryGuide explains the gallery model to LLM consumers.
const GalleryGuide = `# Mosaic Gallery Guide

The gallery holds synthetic placeholder images. Each image has:

- id: opaque unique identifier
- url: placeholder image address of the form https://placehold.co/WxH
  (width 150-279, height 160-299)
- tags: 1-4 tags at creation; users may add more, never duplicates

## Behaviour

1. The gallery starts with 12 images. Every load_more appends 6 more at the
   end; existing images never move or disappear.
2. select_tag shows only images carrying that tag. clear_filter shows all
   images again in their original order. Clearing twice is harmless.
3. add_tag appends a tag to one image. Blank tags and unknown image ids are
   ignored without error. Adding a tag an image already has changes nothing.
4. Tags are trimmed, a leading '#' is dropped, markup is removed and the
   result is cut to 32 characters.
5. list_tags returns how many images carry each tag, most common first.

The candidate tags for new images are published at mosaic://tag-pool.
`
